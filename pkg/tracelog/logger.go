package tracelog

// ModuleSeparator joins a parent module name to a sub-module name.
const ModuleSeparator = ">"

// Logger writes lines tagged with a module name. A Logger is immutable once
// built; SubModule derives new ones.
type Logger struct {
	module   string
	level    Level
	hasLevel bool
	format   Format
	defaults *Defaults
}

// New returns a Logger for moduleName bound to Global() unless WithDefaults is
// given.
//
// Without WithLevel or WithMinLevel the Logger follows the Defaults' level as
// it is at each call. The output format is taken from WithJSON, or else from
// the Defaults at construction time.
func New(moduleName string, opts ...Option) *Logger {
	o := newOptions(opts)

	d := o.defaults
	if d == nil {
		d = Global()
	}

	l := &Logger{
		module:   moduleName,
		defaults: d,
		format:   d.Format(),
	}
	l.apply(o)
	return l
}

// SubModule returns a Logger named "<parent>><name>". It keeps the parent's
// local level, format and Defaults unless opts override them.
func (l *Logger) SubModule(name string, opts ...Option) *Logger {
	child := &Logger{
		module:   l.module + ModuleSeparator + name,
		level:    l.level,
		hasLevel: l.hasLevel,
		format:   l.format,
		defaults: l.defaults,
	}
	child.apply(newOptions(opts))
	return child
}

func (l *Logger) apply(o *options) {
	if o.defaults != nil {
		l.defaults = o.defaults
	}
	if o.json != nil {
		l.format = formatFor(*o.json)
	}
	if o.level != nil {
		if lvl, ok := l.defaults.resolveLevel(o.level); ok {
			l.level, l.hasLevel = lvl, true
		}
	}
}

// Module returns the module name, including any parent path.
func (l *Logger) Module() string {
	return l.module
}

// Level returns the local level override, if any.
func (l *Logger) Level() (Level, bool) {
	return l.level, l.hasLevel
}

// Format returns the output format of this Logger.
func (l *Logger) Format() Format {
	return l.format
}

// EffectiveLevel returns the local override, or the Defaults' current level.
func (l *Logger) EffectiveLevel() Level {
	if l.hasLevel {
		return l.level
	}
	return l.defaults.Level()
}

// Enabled reports whether a call at level would be written.
func (l *Logger) Enabled(level Level) bool {
	return level.Valid() && level <= l.EffectiveLevel()
}

// Trace logs at LevelTrace.
func (l *Logger) Trace(template string, args ...any) {
	l.Log(LevelTrace, template, args...)
}

// Debug logs at LevelDebug.
func (l *Logger) Debug(template string, args ...any) {
	l.Log(LevelDebug, template, args...)
}

// Info logs at LevelInfo.
func (l *Logger) Info(template string, args ...any) {
	l.Log(LevelInfo, template, args...)
}

// Warn logs at LevelWarn.
func (l *Logger) Warn(template string, args ...any) {
	l.Log(LevelWarn, template, args...)
}

// Error logs at LevelError.
func (l *Logger) Error(template string, args ...any) {
	l.Log(LevelError, template, args...)
}

// Fatal logs at LevelFatal. It does not exit the process.
func (l *Logger) Fatal(template string, args ...any) {
	l.Log(LevelFatal, template, args...)
}

// Log formats template with args and writes the line if level passes the
// effective minimum level. Levels up to LevelError go to the error sink.
//
// A single []any argument is taken as the whole argument list.
func (l *Logger) Log(level Level, template string, args ...any) {
	// A misbehaving writer must not take the caller down with it.
	defer func() { _ = recover() }()

	if !l.Enabled(level) {
		return
	}
	l.defaults.emit(level, l.module, l.format, Sprintf(template, normalizeArgs(args)...))
}

func normalizeArgs(args []any) []any {
	if len(args) == 1 {
		if seq, ok := args[0].([]any); ok {
			return seq
		}
	}
	return args
}
