package logging

import (
	"bytes"
	"os"
	"testing"
)

func TestSupportsColor(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		isTTY bool
		want  bool
	}{
		{name: "NO_COLOR prevents color", env: map[string]string{"NO_COLOR": "1"}, isTTY: true, want: false},
		{name: "empty NO_COLOR still prevents color", env: map[string]string{"NO_COLOR": ""}, isTTY: true, want: false},
		{name: "TERM=dumb prevents color", env: map[string]string{"TERM": "dumb"}, isTTY: true, want: false},
		{name: "non-TTY prevents color", isTTY: false, want: false},
		{name: "TTY with xterm", env: map[string]string{"TERM": "xterm-256color"}, isTTY: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", "")
			os.Unsetenv("NO_COLOR")
			t.Setenv("TERM", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			if got := supportsColor(tt.isTTY); got != tt.want {
				t.Errorf("supportsColor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsTTY_Buffer(t *testing.T) {
	if IsTTY(&bytes.Buffer{}) {
		t.Error("IsTTY should return false for a bytes.Buffer")
	}
}
