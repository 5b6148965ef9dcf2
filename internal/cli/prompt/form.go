package prompt

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/thoreinstein/pyup/internal/decision"
	"github.com/thoreinstein/pyup/internal/errors"
	"github.com/thoreinstein/pyup/internal/logging"
)

// runFormFunc is replaced in tests.
var runFormFunc = func(ctx context.Context, form *huh.Form) error { return form.RunWithContext(ctx) }

// FormPrompter renders confirmations and text input as huh forms.
type FormPrompter struct {
	isTerminal func() bool
}

// NewFormPrompter creates a FormPrompter that checks stdin and stdout for a terminal.
func NewFormPrompter() *FormPrompter {
	return &FormPrompter{isTerminal: func() bool {
		return logging.IsTTY(os.Stdin) && logging.IsTTY(os.Stdout)
	}}
}

// Confirm shows a yes/no form for req.
func (p *FormPrompter) Confirm(ctx context.Context, req decision.Request) (bool, error) {
	value := req.Default
	field := huh.NewConfirm().
		Title(req.Question).
		Affirmative("Yes").
		Negative("No").
		Value(&value)
	if req.Detail != "" {
		field.Description(strings.TrimRight(req.Detail, "\n"))
	}

	if err := p.run(ctx, huh.NewForm(huh.NewGroup(field))); err != nil {
		return false, err
	}
	return value, nil
}

// Ask shows a single-line input form.
func (p *FormPrompter) Ask(ctx context.Context, question string) (string, error) {
	var value string
	field := huh.NewInput().
		Title(question).
		Value(&value)

	if err := p.run(ctx, huh.NewForm(huh.NewGroup(field))); err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func (p *FormPrompter) run(ctx context.Context, form *huh.Form) error {
	if p.isTerminal == nil || !p.isTerminal() {
		return ErrNotInteractive
	}
	form.WithShowHelp(false)

	err := runFormFunc(ctx, form)
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrCancelled
	}
	if err != nil {
		return errors.Wrap(err, "running prompt")
	}
	return nil
}

// Interactive reports whether the form prompter can run.
func (p *FormPrompter) Interactive() bool {
	return p.isTerminal != nil && p.isTerminal()
}

var _ decision.Prompter = (*FormPrompter)(nil)
