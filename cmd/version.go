// Package cmd holds build metadata shared by the pyup binary.
package cmd

import (
	"fmt"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/thoreinstein/pyup/cmd.Version=v1.2.3".
// A binary built with `go install` falls back to the module build info.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func init() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && Commit == "none" && len(s.Value) >= 7:
			Commit = s.Value[:7]
		case s.Key == "vcs.time" && Date == "unknown":
			Date = s.Value
		}
	}
}

// BuildInfo returns the line printed by `pyup version`.
func BuildInfo() string {
	return fmt.Sprintf("pyup %s (commit %s, built %s)", Version, Commit, Date)
}
