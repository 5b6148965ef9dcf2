package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor(t *testing.T) {
	tests := []struct {
		platform      Platform
		supported     bool
		methods       []Method
		wantDeps      bool
		guidanceMatch string
	}{
		{MacOS, true, []Method{MethodPackageManager, MethodOfficialScript}, false, "Homebrew"},
		{Ubuntu, true, []Method{MethodSourceClone}, true, ""},
		{UbuntuCompat, true, []Method{MethodSourceClone}, true, "WSL"},
		{WindowsNative, false, nil, false, "wsl --install -d Ubuntu"},
		{Unknown, false, nil, false, "manually"},
	}

	for _, tt := range tests {
		t.Run(tt.platform.String(), func(t *testing.T) {
			s := For(tt.platform)
			assert.Equal(t, tt.platform, s.Platform())
			assert.Equal(t, tt.supported, s.Supported())
			assert.Equal(t, tt.methods, s.Methods())
			if tt.wantDeps {
				assert.Contains(t, s.BuildDeps(), "build-essential")
				assert.Contains(t, s.BuildDeps(), "libssl-dev")
			} else {
				assert.Empty(t, s.BuildDeps())
			}
			if tt.guidanceMatch != "" {
				assert.Contains(t, s.Guidance(), tt.guidanceMatch)
			}
		})
	}
}

func TestBuildDepsIsCopy(t *testing.T) {
	deps := For(Ubuntu).BuildDeps()
	deps[0] = "mutated"
	assert.Equal(t, "build-essential", For(Ubuntu).BuildDeps()[0])
}

func TestWindowsGuidanceMentionsDismFallback(t *testing.T) {
	assert.Contains(t, For(WindowsNative).Guidance(), "dism.exe /online /enable-feature")
}
