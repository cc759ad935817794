package tracelog

import (
	"io"
	"time"
)

// Format selects how a line is rendered.
type Format string

const (
	// FormatText renders "<library> [LEVEL] module: message".
	FormatText Format = "text"
	// FormatJSON renders a single-line JSON envelope.
	FormatJSON Format = "json"
)

// ColorMode controls ANSI colouring of text output.
type ColorMode string

const (
	// ColorAuto colours only when the sink is a terminal that supports it.
	ColorAuto ColorMode = "auto"
	// ColorAlways colours regardless of the sink.
	ColorAlways ColorMode = "always"
	// ColorNever disables colour.
	ColorNever ColorMode = "never"
)

// Option configures a Logger, a sub-module Logger or a Defaults. Options that
// do not apply to the receiving constructor are ignored.
type Option func(*options)

type levelChoice struct {
	name   string
	value  Level
	byName bool
}

type options struct {
	level    *levelChoice
	json     *bool
	defaults *Defaults

	out    io.Writer
	errOut io.Writer
	now    func() time.Time
	color  ColorMode
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// WithLevel pins the minimum level by name. Unknown names leave the level
// unset and write a warning.
func WithLevel(name string) Option {
	return func(o *options) {
		o.level = &levelChoice{name: name, byName: true}
	}
}

// WithMinLevel pins the minimum level by value.
func WithMinLevel(level Level) Option {
	return func(o *options) {
		o.level = &levelChoice{value: level}
	}
}

// WithJSON selects JSON (true) or text (false) output.
func WithJSON(enabled bool) Option {
	return func(o *options) {
		o.json = &enabled
	}
}

// WithDefaults binds a Logger to d instead of Global().
func WithDefaults(d *Defaults) Option {
	return func(o *options) {
		o.defaults = d
	}
}

// WithOutput sets the informational and error sinks of a Defaults. A nil
// writer leaves that sink unchanged.
func WithOutput(out, errOut io.Writer) Option {
	return func(o *options) {
		o.out = out
		o.errOut = errOut
	}
}

// WithClock replaces the time source used for JSON timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithColor sets the colour mode of a Defaults.
func WithColor(mode ColorMode) Option {
	return func(o *options) {
		o.color = mode
	}
}

func formatFor(json bool) Format {
	if json {
		return FormatJSON
	}
	return FormatText
}
