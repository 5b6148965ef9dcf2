package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	buildinfo "github.com/thoreinstein/pyup/cmd"
)

func TestVersionCommand(t *testing.T) {
	v, c, d := buildinfo.Version, buildinfo.Commit, buildinfo.Date
	defer func() { buildinfo.Version, buildinfo.Commit, buildinfo.Date = v, c, d }()
	buildinfo.Version, buildinfo.Commit, buildinfo.Date = "v1.2.3", "abc1234", "2026-04-12"

	cmd, out := testCommand(t)
	versionCmd.Run(cmd, nil)

	assert.Equal(t, "pyup v1.2.3 (commit abc1234, built 2026-04-12)\n", out.String())
}
