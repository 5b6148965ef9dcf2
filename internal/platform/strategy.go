package platform

import "strings"

// Method is one way of installing pyenv.
type Method string

const (
	// MethodPackageManager installs through Homebrew.
	MethodPackageManager Method = "package-manager"
	// MethodOfficialScript runs the remote pyenv installer script.
	MethodOfficialScript Method = "official-script"
	// MethodSourceClone installs apt build deps and clones the repositories.
	MethodSourceClone Method = "source-clone"
)

// Strategy is the per-variant capability set.
type Strategy interface {
	Platform() Platform
	// Supported reports whether pyup can provision this host.
	Supported() bool
	// Methods lists install methods in order of preference.
	Methods() []Method
	// BuildDeps lists native packages needed to compile CPython.
	BuildDeps() []string
	// Guidance is shown when the host is unsupported or needs a reminder.
	Guidance() string
}

// For returns the Strategy for p.
func For(p Platform) Strategy {
	switch p {
	case MacOS:
		return macOS{}
	case Ubuntu:
		return ubuntu{}
	case UbuntuCompat:
		return ubuntu{compat: true}
	case WindowsNative:
		return windows{}
	default:
		return unknown{}
	}
}

// ubuntuBuildDeps are the apt packages pyenv's wiki lists for building CPython.
var ubuntuBuildDeps = []string{
	"build-essential",
	"curl",
	"git",
	"libssl-dev",
	"zlib1g-dev",
	"libbz2-dev",
	"libreadline-dev",
	"libsqlite3-dev",
	"llvm",
	"libncursesw5-dev",
	"xz-utils",
	"tk-dev",
	"libxml2-dev",
	"libxmlsec1-dev",
	"libffi-dev",
	"liblzma-dev",
}

type macOS struct{}

func (macOS) Platform() Platform { return MacOS }
func (macOS) Supported() bool    { return true }
func (macOS) Methods() []Method {
	return []Method{MethodPackageManager, MethodOfficialScript}
}

// Homebrew resolves build dependencies itself.
func (macOS) BuildDeps() []string { return nil }
func (macOS) Guidance() string {
	return "Homebrew is preferred. Without it the official installer (https://pyenv.run) is offered."
}

type ubuntu struct {
	compat bool
}

func (u ubuntu) Platform() Platform {
	if u.compat {
		return UbuntuCompat
	}
	return Ubuntu
}
func (ubuntu) Supported() bool     { return true }
func (ubuntu) Methods() []Method   { return []Method{MethodSourceClone} }
func (ubuntu) BuildDeps() []string { return append([]string(nil), ubuntuBuildDeps...) }
func (u ubuntu) Guidance() string {
	if u.compat {
		return "Detected Ubuntu under WSL. Always run pyup inside your WSL/Ubuntu terminal, not in cmd.exe or PowerShell."
	}
	return ""
}

type windows struct{}

func (windows) Platform() Platform  { return WindowsNative }
func (windows) Supported() bool     { return false }
func (windows) Methods() []Method   { return nil }
func (windows) BuildDeps() []string { return nil }
func (windows) Guidance() string    { return windowsGuidance }

var windowsGuidance = strings.TrimSpace(`
pyup runs inside a Unix-like shell: macOS, Ubuntu, or Ubuntu under the
Windows Subsystem for Linux (WSL).

1. Enable WSL. In PowerShell opened as Administrator run:

       wsl --install -d Ubuntu

   On older Windows 10 builds where that fails, run:

       dism.exe /online /enable-feature /featurename:Microsoft-Windows-Subsystem-Linux /all /norestart
       dism.exe /online /enable-feature /featurename:VirtualMachinePlatform /all /norestart

   Restart your computer if prompted.

2. Install Ubuntu from the Microsoft Store if 'wsl --install' did not.

3. Open the Ubuntu (WSL) terminal, create your Unix user, and run pyup there.
`)

type unknown struct{}

func (unknown) Platform() Platform  { return Unknown }
func (unknown) Supported() bool     { return false }
func (unknown) Methods() []Method   { return nil }
func (unknown) BuildDeps() []string { return nil }
func (unknown) Guidance() string {
	return "pyup can provision macOS and Ubuntu (including Ubuntu under WSL). Install pyenv manually, then re-run pyup."
}
