package tracelog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Handler implements slog.Handler on top of a Logger, so that
// slog.New(tracelog.NewHandler(l)) shares l's level filter and sinks.
//
// Attributes are appended to the message as " key=value"; groups qualify
// keys as "group.key".
type Handler struct {
	logger *Logger
	prefix string // group path, e.g. "req.headers."
	attrs  string // pre-rendered attributes from WithAttrs
}

// NewHandler creates a Handler that writes through l.
func NewHandler(l *Logger) *Handler {
	return &Handler{logger: l}
}

// Enabled reports whether l would write a record at level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.Enabled(LevelFromSlog(level))
}

// Handle renders the record and writes it through the Logger.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Message)
	b.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, h.prefix, a)
		return true
	})

	// The message is already rendered; keep its '%' characters literal.
	h.logger.Log(LevelFromSlog(r.Level), "%s", b.String())
	return nil
}

// WithAttrs returns a new Handler with the given attributes.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		appendAttr(&b, h.prefix, a)
	}
	newH := *h
	newH.attrs = b.String()
	return &newH
}

// WithGroup returns a new Handler whose later attributes are qualified by name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	newH := *h
	newH.prefix = h.prefix + name + "."
	return &newH
}

func appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if len(group) == 0 {
			return
		}
		// Inline groups (empty key) keep the current prefix.
		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + "."
		}
		for _, ga := range group {
			appendAttr(b, p, ga)
		}
		return
	}

	fmt.Fprintf(b, " %s%s=%v", prefix, a.Key, a.Value.Any())
}
