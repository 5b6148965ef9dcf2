package platform

// Platform is the detected host variant. It is computed once per run.
type Platform int

const (
	Unknown Platform = iota
	MacOS
	Ubuntu
	// UbuntuCompat is Ubuntu running under the Windows Subsystem for Linux.
	UbuntuCompat
	WindowsNative
)

// String returns the identifier used in logs, state and doctor output.
func (p Platform) String() string {
	switch p {
	case MacOS:
		return "macos"
	case Ubuntu:
		return "ubuntu"
	case UbuntuCompat:
		return "ubuntu-wsl"
	case WindowsNative:
		return "windows"
	default:
		return "unknown"
	}
}

// Label returns a human readable name for the variant.
func (p Platform) Label() string {
	switch p {
	case MacOS:
		return "macOS"
	case Ubuntu:
		return "Ubuntu"
	case UbuntuCompat:
		return "Ubuntu under Windows Subsystem for Linux (WSL)"
	case WindowsNative:
		return "Windows"
	default:
		return "an unrecognized system"
	}
}

// IsUbuntuLike reports whether apt and the source-clone install apply.
func (p Platform) IsUbuntuLike() bool {
	return p == Ubuntu || p == UbuntuCompat
}
