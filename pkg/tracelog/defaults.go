package tracelog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/thoreinstein/tracelog/internal/tty"
)

// unsetLibraryName is the library name reported before any configuration call.
const unsetLibraryName = "call SetGlobalDefaults to set library name and global log level"

// internalModule is the module name used for the package's own warnings.
const internalModule = "tracelog"

// Defaults is the shared configuration loggers read at emission time: the
// library name, the default minimum level, the output format and the sink
// binding (writers, clock, colour).
//
// The process-wide instance is returned by Global. It is meant to be
// configured once at startup and read afterwards; the last call to Set wins.
type Defaults struct {
	mu      sync.RWMutex
	library string
	level   Level
	format  Format
	color   ColorMode
	out     io.Writer
	errOut  io.Writer
	now     func() time.Time

	// writeMu keeps concurrent lines from interleaving.
	writeMu sync.Mutex
}

var global = NewDefaults()

// Global returns the process-wide Defaults.
func Global() *Defaults {
	return global
}

// SetGlobalDefaults configures Global(). See Defaults.Set.
func SetGlobalDefaults(libraryName, levelName string, opts ...Option) {
	global.Set(libraryName, levelName, opts...)
}

// NewDefaults returns a Defaults writing to os.Stdout and os.Stderr at level
// DEBUG in text format. WithOutput, WithClock, WithColor, WithJSON and
// WithLevel/WithMinLevel adjust the initial state.
func NewDefaults(opts ...Option) *Defaults {
	d := &Defaults{
		library: unsetLibraryName,
		level:   LevelDebug,
		format:  FormatText,
		color:   ColorAuto,
		out:     os.Stdout,
		errOut:  os.Stderr,
		now:     time.Now,
	}

	o := newOptions(opts)
	d.bindSinks(o)
	if o.json != nil {
		d.format = formatFor(*o.json)
	}
	if o.level != nil {
		if lvl, ok := d.resolveLevel(o.level); ok {
			d.level = lvl
		}
	}
	return d
}

// Set replaces the library name, default level and output format. An
// unrecognised levelName falls back to INFO with a warning on the error sink.
// Sink options (WithOutput, WithClock, WithColor) are applied when given and
// otherwise keep their previous values.
func (d *Defaults) Set(libraryName, levelName string, opts ...Option) {
	o := newOptions(opts)

	level, err := ParseLevel(levelName)
	if err != nil {
		level = LevelInfo
	}

	d.mu.Lock()
	d.library = libraryName
	d.level = level
	d.format = FormatText
	if o.json != nil {
		d.format = formatFor(*o.json)
	}
	d.bindSinks(o)
	d.mu.Unlock()

	if err != nil {
		d.warn(fmt.Sprintf("unrecognised log level %q, defaulting to INFO", levelName))
	}
}

// Library returns the configured library name.
func (d *Defaults) Library() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.library
}

// Level returns the default minimum level.
func (d *Defaults) Level() Level {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.level
}

// Format returns the default output format.
func (d *Defaults) Format() Format {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.format
}

// bindSinks applies sink options. Callers hold d.mu or own d exclusively.
func (d *Defaults) bindSinks(o *options) {
	if o.out != nil {
		d.out = o.out
	}
	if o.errOut != nil {
		d.errOut = o.errOut
	}
	if o.now != nil {
		d.now = o.now
	}
	if o.color != "" {
		d.color = o.color
	}
}

// resolveLevel turns a level option into a Level, warning about names or
// values outside the table.
func (d *Defaults) resolveLevel(c *levelChoice) (Level, bool) {
	if c.byName {
		lvl, err := ParseLevel(c.name)
		if err != nil {
			d.warn(fmt.Sprintf("unrecognised log level %q, ignoring local level", c.name))
			return 0, false
		}
		return lvl, true
	}
	if !c.value.Valid() {
		d.warn(fmt.Sprintf("unrecognised log level %s, ignoring local level", c.value))
		return 0, false
	}
	return c.value, true
}

// warn reports a configuration problem. It bypasses level filtering and
// always goes to the error sink.
func (d *Defaults) warn(message string) {
	d.mu.RLock()
	w := d.errOut
	d.mu.RUnlock()
	d.write(w, LevelWarn, internalModule, FormatText, message)
}

// emit routes a formatted message to the sink for its level.
func (d *Defaults) emit(level Level, module string, format Format, message string) {
	d.mu.RLock()
	w := d.out
	if level <= LevelError {
		w = d.errOut
	}
	d.mu.RUnlock()
	d.write(w, level, module, format, message)
}

func (d *Defaults) write(w io.Writer, level Level, module string, format Format, message string) {
	d.mu.RLock()
	library, now, mode := d.library, d.now, d.color
	d.mu.RUnlock()

	var line []byte
	if format == FormatJSON {
		env := Envelope{
			Level:      level.String(),
			LoggerName: library,
			ModuleName: module,
			Message:    message,
			Timestamp:  FormatTimestamp(now()),
		}
		data, err := env.MarshalLine()
		if err != nil {
			return
		}
		line = data
	} else {
		line = []byte(renderText(useColor(w, mode), library, level, module, message))
	}

	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	_, _ = w.Write(line)
}

func useColor(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return tty.SupportsColor(w)
	}
}

var levelColors = map[Level][]color.Attribute{
	LevelFatal: {color.FgHiRed, color.Bold},
	LevelError: {color.FgRed},
	LevelWarn:  {color.FgYellow},
	LevelInfo:  {color.FgGreen},
	LevelDebug: {color.FgMagenta},
	LevelTrace: {color.FgHiBlack},
}

func paint(s string, attrs ...color.Attribute) string {
	c := color.New(attrs...)
	// fatih/color decides from os.Stdout by default; the sink was already checked.
	c.EnableColor()
	return c.Sprint(s)
}

func renderText(colored bool, library string, level Level, module, message string) string {
	tag := "[" + level.String() + "]"
	if colored {
		library = paint(library, color.FgCyan, color.Bold)
		tag = paint(tag, levelColors[level]...)
	}
	return library + " " + tag + " " + module + ": " + message + "\n"
}
