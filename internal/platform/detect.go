package platform

import (
	"bufio"
	"os"
	"runtime"
	"strings"
)

// Host files consulted by DetectHost.
const (
	procVersionPath = "/proc/version"
	osReleasePath   = "/etc/os-release"
)

// Signals are the raw OS identification inputs to Detect.
type Signals struct {
	// GOOS is the kernel/OS name as reported by runtime.GOOS.
	GOOS string
	// ProcVersion is the content of /proc/version.
	ProcVersion string
	// OSRelease is the content of /etc/os-release.
	OSRelease string
	// WSLDistroEnv is the value of WSL_DISTRO_NAME.
	WSLDistroEnv string
}

// Detect classifies the host. The OS name is checked first; on Linux the
// distribution decides between Ubuntu and Unknown, and within Ubuntu the
// WSL marker decides between Ubuntu and UbuntuCompat.
func Detect(s Signals) Platform {
	switch s.GOOS {
	case "darwin":
		return MacOS
	case "windows":
		return WindowsNative
	case "linux":
	default:
		return Unknown
	}

	if !isUbuntu(parseOSRelease(s.OSRelease)) {
		return Unknown
	}
	if hasWSLMarker(s) {
		return UbuntuCompat
	}
	return Ubuntu
}

// DetectHost gathers Signals from the running system and classifies it.
func DetectHost() Platform {
	return Detect(HostSignals())
}

// HostSignals reads the detection inputs. Unreadable files become empty
// strings.
func HostSignals() Signals {
	s := Signals{
		GOOS:         runtime.GOOS,
		WSLDistroEnv: os.Getenv("WSL_DISTRO_NAME"),
	}
	if s.GOOS == "linux" {
		s.ProcVersion = readOptional(procVersionPath)
		s.OSRelease = readOptional(osReleasePath)
	}
	return s
}

func readOptional(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

func isUbuntu(release map[string]string) bool {
	if strings.EqualFold(release["ID"], "ubuntu") {
		return true
	}
	for _, like := range strings.Fields(release["ID_LIKE"]) {
		if strings.EqualFold(like, "ubuntu") {
			return true
		}
	}
	return false
}

func hasWSLMarker(s Signals) bool {
	if s.WSLDistroEnv != "" {
		return true
	}
	v := strings.ToLower(s.ProcVersion)
	return strings.Contains(v, "microsoft") || strings.Contains(v, "wsl")
}

// parseOSRelease reads KEY=value pairs, stripping optional quotes.
func parseOSRelease(content string) map[string]string {
	out := make(map[string]string)
	sc := bufio.NewScanner(strings.NewReader(content))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		out[key] = strings.Trim(value, `"'`)
	}
	return out
}
