package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Handler implements slog.Handler for terminal output.
// Colors are enabled only when the writer supports them.
type Handler struct {
	opts   slog.HandlerOptions
	out    io.Writer
	mu     *sync.Mutex
	attrs  []slog.Attr
	prefix string

	useColor bool
	levels   map[slog.Level]*color.Color
	dim      *color.Color
	key      *color.Color
}

// NewHandler creates a new terminal handler.
func NewHandler(out io.Writer, opts *slog.HandlerOptions) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}

	h := &Handler{
		opts:     *opts,
		out:      out,
		mu:       &sync.Mutex{},
		useColor: SupportsColor(out),
	}
	if h.useColor {
		h.dim = color.New(color.FgHiBlack)
		h.key = color.New(color.FgCyan)
		h.levels = map[slog.Level]*color.Color{
			slog.LevelDebug: color.New(color.FgMagenta),
			slog.LevelInfo:  color.New(color.FgGreen),
			slog.LevelWarn:  color.New(color.FgYellow),
			slog.LevelError: color.New(color.FgRed, color.Bold),
		}
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle writes one line: time, level, message, then key=value attributes.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	if !r.Time.IsZero() {
		b.WriteString(h.paint(h.dim, r.Time.Format(time.TimeOnly)))
		b.WriteByte(' ')
	}

	lvl := fmt.Sprintf("%-5s", r.Level.String())
	b.WriteString(h.paint(h.levelColor(r.Level), lvl))
	b.WriteByte(' ')
	b.WriteString(r.Message)

	for _, a := range h.attrs {
		h.writeAttr(&b, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&b, h.prefix, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *Handler) levelColor(l slog.Level) *color.Color {
	if !h.useColor {
		return nil
	}
	switch {
	case l >= slog.LevelError:
		return h.levels[slog.LevelError]
	case l >= slog.LevelWarn:
		return h.levels[slog.LevelWarn]
	case l >= slog.LevelInfo:
		return h.levels[slog.LevelInfo]
	default:
		return h.levels[slog.LevelDebug]
	}
}

func (h *Handler) paint(c *color.Color, s string) string {
	if c == nil {
		return s
	}
	return c.Sprint(s)
}

func (h *Handler) writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		sub := prefix + a.Key + "."
		if a.Key == "" {
			sub = prefix
		}
		for _, ga := range a.Value.Group() {
			h.writeAttr(b, sub, ga)
		}
		return
	}

	key := prefix + a.Key
	var value string
	switch {
	case IsSecretKey(a.Key):
		value = "********"
	case a.Value.Kind() == slog.KindString:
		value = RedactURL(a.Value.String())
		if value == "" || strings.ContainsAny(value, " \t\"=") {
			value = fmt.Sprintf("%q", value)
		}
	default:
		value = a.Value.String()
	}

	b.WriteByte(' ')
	b.WriteString(h.paint(h.key, key))
	b.WriteByte('=')
	b.WriteString(value)
}

// WithAttrs returns a new Handler with the given attributes.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newH := *h
	newH.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	newH.attrs = append(newH.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		newH.attrs = append(newH.attrs, a)
	}
	return &newH
}

// WithGroup returns a new Handler whose later attribute keys are prefixed
// with name and a dot.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	newH := *h
	newH.prefix = h.prefix + name + "."
	return &newH
}
