// Package editor launches the user's preferred text editor.
package editor

import (
	"context"
	"io"
	"os/exec"
	"strings"

	"github.com/thoreinstein/pyup/internal/errors"
	"github.com/thoreinstein/pyup/internal/runner"
)

// Command returns the editor argv for env. $EDITOR wins over $VISUAL and
// either may carry flags, e.g. "code --wait". Without both, nano is used
// when it resolves, then vi.
func Command(env runner.Env) []string {
	for _, key := range []string{"EDITOR", "VISUAL"} {
		if v := strings.Fields(env.Get(key)); len(v) > 0 {
			return v
		}
	}
	if _, ok := env.LookPath("nano"); ok {
		return []string{"nano"}
	}
	return []string{"vi"}
}

// Open runs the editor on path with the given terminal streams and waits
// for it to exit.
func Open(ctx context.Context, env runner.Env, path string, stdin io.Reader, stdout, stderr io.Writer) error {
	argv := append(Command(env), path)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = env.Environ()
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running editor %s", argv[0])
	}
	return nil
}
