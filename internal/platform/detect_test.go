package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	ubuntuRelease = `NAME="Ubuntu"
VERSION_ID="24.04"
ID=ubuntu
ID_LIKE=debian
`
	mintRelease = `NAME="Linux Mint"
ID=linuxmint
ID_LIKE="ubuntu debian"
`
	fedoraRelease = `NAME="Fedora Linux"
ID=fedora
`
	wslProc    = "Linux version 5.15.153.1-microsoft-standard-WSL2 (root@1234) (gcc 11.2.0)"
	nativeProc = "Linux version 6.8.0-45-generic (buildd@lcy02-amd64-075) (gcc 13.2.0)"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		in   Signals
		want Platform
	}{
		{name: "macOS", in: Signals{GOOS: "darwin"}, want: MacOS},
		{name: "windows", in: Signals{GOOS: "windows"}, want: WindowsNative},
		{name: "windows ignores linux signals", in: Signals{GOOS: "windows", OSRelease: ubuntuRelease, ProcVersion: wslProc}, want: WindowsNative},
		{name: "ubuntu native", in: Signals{GOOS: "linux", OSRelease: ubuntuRelease, ProcVersion: nativeProc}, want: Ubuntu},
		{name: "ubuntu derivative via ID_LIKE", in: Signals{GOOS: "linux", OSRelease: mintRelease, ProcVersion: nativeProc}, want: Ubuntu},
		{name: "ubuntu under WSL via proc", in: Signals{GOOS: "linux", OSRelease: ubuntuRelease, ProcVersion: wslProc}, want: UbuntuCompat},
		{name: "ubuntu under WSL via env", in: Signals{GOOS: "linux", OSRelease: ubuntuRelease, WSLDistroEnv: "Ubuntu-24.04"}, want: UbuntuCompat},
		{name: "fedora", in: Signals{GOOS: "linux", OSRelease: fedoraRelease, ProcVersion: nativeProc}, want: Unknown},
		{name: "fedora under WSL", in: Signals{GOOS: "linux", OSRelease: fedoraRelease, ProcVersion: wslProc}, want: Unknown},
		{name: "linux without os-release", in: Signals{GOOS: "linux"}, want: Unknown},
		{name: "garbage os-release", in: Signals{GOOS: "linux", OSRelease: "\x00\x01not a release file"}, want: Unknown},
		{name: "freebsd", in: Signals{GOOS: "freebsd"}, want: Unknown},
		{name: "empty signals", in: Signals{}, want: Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.in))
		})
	}
}

func TestParseOSRelease(t *testing.T) {
	got := parseOSRelease("# comment\nNAME=\"Ubuntu\"\n\nID=ubuntu\nBROKEN LINE\nVERSION_CODENAME='noble'\n")

	assert.Equal(t, map[string]string{
		"NAME":             "Ubuntu",
		"ID":               "ubuntu",
		"VERSION_CODENAME": "noble",
	}, got)
}

func TestDetectHost_NeverPanics(t *testing.T) {
	p := DetectHost()
	assert.NotEmpty(t, p.String())
}

func TestPlatformString(t *testing.T) {
	assert.Equal(t, "macos", MacOS.String())
	assert.Equal(t, "ubuntu-wsl", UbuntuCompat.String())
	assert.Equal(t, "unknown", Platform(42).String())
}
