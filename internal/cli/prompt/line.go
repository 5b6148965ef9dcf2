// Package prompt provides interactive console prompts for the setup flow.
//
// [LinePrompter] reads plain lines and works on any stream. [FormPrompter]
// renders huh forms and needs a terminal. Both satisfy decision.Prompter.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/thoreinstein/pyup/internal/decision"
	"github.com/thoreinstein/pyup/internal/errors"
)

// Sentinel errors for prompting.
var (
	ErrCancelled       = errors.New("prompt cancelled")
	ErrNotInteractive  = errors.New("interactive prompt requires a terminal")
	ErrNothingToSelect = errors.New("nothing to select from")
)

// LinePrompter asks questions over a line-oriented reader.
type LinePrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewLinePrompter creates a LinePrompter using stdin and stdout.
func NewLinePrompter() *LinePrompter {
	return NewLinePrompterWithIO(os.Stdin, os.Stdout)
}

// NewLinePrompterWithIO creates a LinePrompter with custom reader and writer for testing.
func NewLinePrompterWithIO(r io.Reader, w io.Writer) *LinePrompter {
	return &LinePrompter{
		reader: bufio.NewReader(r),
		writer: w,
	}
}

// Confirm prints req and reads a yes/no answer. An empty reply takes
// req.Default; anything unrecognized asks again. EOF returns ErrCancelled.
func (p *LinePrompter) Confirm(ctx context.Context, req decision.Request) (bool, error) {
	if req.Detail != "" {
		fmt.Fprintln(p.writer, strings.TrimRight(req.Detail, "\n"))
	}

	suffix := "[y/N]"
	if req.Default {
		suffix = "[Y/n]"
	}

	for {
		fmt.Fprintf(p.writer, "%s %s ", req.Question, suffix)
		line, err := p.readLine(ctx)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "":
			return req.Default, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.writer, "Please answer y or n.")
	}
}

// Ask prints question and returns the trimmed reply.
func (p *LinePrompter) Ask(ctx context.Context, question string) (string, error) {
	fmt.Fprintf(p.writer, "%s: ", question)
	return p.readLine(ctx)
}

func (p *LinePrompter) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.Wrap(err, "reading answer")
	}
	line, err := p.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if strings.TrimSpace(line) == "" {
				fmt.Fprintln(p.writer)
				return "", ErrCancelled
			}
			return strings.TrimSpace(line), nil
		}
		return "", errors.Wrap(err, "reading answer")
	}
	return strings.TrimSpace(line), nil
}

var _ decision.Prompter = (*LinePrompter)(nil)
