package tracelog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

const (
	libName       = "TestLibrary"
	testLogString = "Test log string"
	testLogName   = "TestModule"
	subModuleName = "SubModule"
)

// capture returns Defaults writing to two buffers with colour disabled.
func capture(opts ...Option) (*Defaults, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	base := []Option{WithOutput(&out, &errOut), WithColor(ColorNever)}
	return NewDefaults(append(base, opts...)...), &out, &errOut
}

func lines(buf *bytes.Buffer) []string {
	s := strings.TrimSuffix(buf.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// oneLine fails the test unless buf holds exactly one line, and returns it.
func oneLine(t *testing.T, buf *bytes.Buffer) string {
	t.Helper()
	got := lines(buf)
	if len(got) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(got), buf.String())
	}
	return got[0]
}

func assertContainsAll(t *testing.T, s string, subs ...string) {
	t.Helper()
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			t.Errorf("%q does not contain %q", s, sub)
		}
	}
}

func TestDispatch(t *testing.T) {
	tests := []struct {
		name    string
		call    func(*Logger)
		level   string
		toError bool
	}{
		{"info to info sink", func(l *Logger) { l.Info(testLogString) }, "[INFO]", false},
		{"error to error sink", func(l *Logger) { l.Error(testLogString) }, "[ERROR]", true},
		{"warn to info sink", func(l *Logger) { l.Warn(testLogString) }, "[WARN]", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, out, errOut := capture()
			d.Set(libName, "INFO")

			tt.call(New(testLogName, WithDefaults(d)))

			written, other := out, errOut
			if tt.toError {
				written, other = errOut, out
			}
			assertContainsAll(t, oneLine(t, written), testLogString, libName, testLogName, tt.level)
			if other.Len() != 0 {
				t.Errorf("other sink got %q, want nothing", other.String())
			}
		})
	}
}

func TestDebug_SuppressedAtInfo(t *testing.T) {
	d, out, errOut := capture()
	d.Set(libName, "INFO")

	New(testLogName, WithDefaults(d)).Debug(testLogString)

	if out.Len()+errOut.Len() != 0 {
		t.Errorf("debug written at INFO: %q %q", out.String(), errOut.String())
	}
}

func TestDebug_LocalTraceOverridesGlobal(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"by name", WithLevel("TRACE")},
		{"by value", WithMinLevel(LevelTrace)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, out, _ := capture()
			d.Set(libName, "INFO")

			New(testLogName, WithDefaults(d), tt.opt).Debug(testLogString)

			assertContainsAll(t, oneLine(t, out), testLogString, libName, "[DEBUG]")
		})
	}
}

func TestTextLineFormat(t *testing.T) {
	d, out, _ := capture()
	d.Set(libName, "INFO")

	New(testLogName, WithDefaults(d)).Warn("disk at %d%%", 91)

	if got, want := out.String(), "TestLibrary [WARN] TestModule: disk at 91%\n"; got != want {
		t.Errorf("line = %q, want %q", got, want)
	}
}

func TestFatal_RoutedToErrorSink(t *testing.T) {
	d, out, errOut := capture()
	d.Set(libName, "FATAL")

	l := New(testLogName, WithDefaults(d))
	l.Fatal("going down")
	l.Error("not at FATAL")

	if got, want := errOut.String(), "TestLibrary [FATAL] TestModule: going down\n"; got != want {
		t.Errorf("error sink = %q, want %q", got, want)
	}
	if out.Len() != 0 {
		t.Errorf("info sink = %q, want empty", out.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	for _, configured := range Levels() {
		for _, call := range Levels() {
			name := fmt.Sprintf("%s at %s", call, configured)
			t.Run(name, func(t *testing.T) {
				d, out, errOut := capture()
				d.Set(libName, configured.String())

				New(testLogName, WithDefaults(d)).Log(call, "message")

				written := out.Len()+errOut.Len() > 0
				if want := call <= configured; written != want {
					t.Fatalf("written = %v, want %v", written, want)
				}
				if !written {
					return
				}
				if call <= LevelError && out.Len() != 0 {
					t.Errorf("%s reached the info sink", call)
				}
				if call > LevelError && errOut.Len() != 0 {
					t.Errorf("%s reached the error sink", call)
				}
			})
		}
	}
}

func TestLog_InvalidLevelDropped(t *testing.T) {
	d, out, errOut := capture(WithMinLevel(LevelTrace))
	l := New(testLogName, WithDefaults(d))

	l.Log(Level(-1), "negative")
	l.Log(Level(42), "too large")

	if out.Len()+errOut.Len() != 0 {
		t.Errorf("invalid levels written: %q %q", out.String(), errOut.String())
	}
}

func TestLog_OversizedPlaceholderKeepsLine(t *testing.T) {
	d, out, _ := capture()
	d.Set(libName, "INFO")

	New(testLogName, WithDefaults(d)).Info("%99999999999999999999s done", "x")

	want := "TestLibrary [INFO] TestModule: %99999999999999999999s done\n"
	if got := out.String(); got != want {
		t.Errorf("line = %q, want %q", got, want)
	}
}

func TestSubModule(t *testing.T) {
	d, out, _ := capture()
	d.Set(libName, "INFO")

	parent := New(testLogName, WithDefaults(d))
	parent.SubModule(subModuleName).Info(testLogString)

	assertContainsAll(t, oneLine(t, out), testLogName+">"+subModuleName)
}

func TestSubModule_NestedPath(t *testing.T) {
	d, _, _ := capture()
	l := New("a", WithDefaults(d)).SubModule("b").SubModule("c")
	if got := l.Module(); got != "a>b>c" {
		t.Errorf("Module() = %q, want %q", got, "a>b>c")
	}
}

func TestSubModule_LevelInheritance(t *testing.T) {
	d, _, _ := capture()
	d.Set(libName, "INFO")

	parent := New(testLogName, WithDefaults(d), WithLevel("WARN"))

	tests := []struct {
		name       string
		logger     *Logger
		wantPinned bool
		want       Level
	}{
		{"inherited", parent.SubModule(subModuleName), true, LevelWarn},
		{"overridden", parent.SubModule(subModuleName, WithLevel("TRACE")), true, LevelTrace},
		{"parent untouched", parent, true, LevelWarn},
		{"unpinned", New(testLogName, WithDefaults(d)).SubModule(subModuleName), false, LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lvl, ok := tt.logger.Level()
			if ok != tt.wantPinned {
				t.Fatalf("Level() pinned = %v, want %v", ok, tt.wantPinned)
			}
			if ok && lvl != tt.want {
				t.Errorf("Level() = %v, want %v", lvl, tt.want)
			}
			if got := tt.logger.EffectiveLevel(); got != tt.want {
				t.Errorf("EffectiveLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSubModule_InheritsFormat(t *testing.T) {
	d, out, _ := capture()
	d.Set(libName, "INFO")

	New(testLogName, WithDefaults(d), WithJSON(true)).SubModule(subModuleName).Info("hi")

	var env map[string]any
	if err := json.Unmarshal(out.Bytes(), &env); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if got, want := env["module_name"], testLogName+">"+subModuleName; got != want {
		t.Errorf("module_name = %v, want %q", got, want)
	}
}

func TestEffectiveLevel_FollowsDefaults(t *testing.T) {
	d, out, _ := capture()
	d.Set(libName, "INFO")

	l := New(testLogName, WithDefaults(d))
	l.Debug("first")
	if out.Len() != 0 {
		t.Fatalf("debug written at INFO: %q", out.String())
	}

	d.Set(libName, "DEBUG")
	l.Debug("second")
	assertContainsAll(t, out.String(), "second")
}

func TestEffectiveLevel_PinnedIgnoresDefaults(t *testing.T) {
	d, out, _ := capture()
	d.Set(libName, "TRACE")

	l := New(testLogName, WithDefaults(d), WithLevel("ERROR"))
	l.Info("dropped")
	if out.Len() != 0 {
		t.Errorf("info written with ERROR pinned: %q", out.String())
	}
	if got := l.EffectiveLevel(); got != LevelError {
		t.Errorf("EffectiveLevel() = %v, want %v", got, LevelError)
	}
}

func TestSetGlobalDefaults_UnknownLevel(t *testing.T) {
	d, _, errOut := capture()
	d.Set(libName, "LOUD")

	if d.Level() != LevelInfo {
		t.Errorf("Level() = %v, want %v", d.Level(), LevelInfo)
	}
	if d.Library() != libName {
		t.Errorf("Library() = %q, want %q", d.Library(), libName)
	}
	assertContainsAll(t, errOut.String(), `unrecognised log level "LOUD", defaulting to INFO`, "[WARN]")
}

func TestSetGlobalDefaults_CaseSensitive(t *testing.T) {
	d, _, errOut := capture()
	d.Set(libName, "debug")

	if d.Level() != LevelInfo {
		t.Errorf("Level() = %v, want %v", d.Level(), LevelInfo)
	}
	if errOut.Len() == 0 {
		t.Error("expected a warning for a lower-case level name")
	}
}

func TestSetGlobalDefaults_ReplacesState(t *testing.T) {
	d, _, _ := capture()
	d.Set("first", "TRACE", WithJSON(true))
	d.Set("second", "ERROR")

	if d.Library() != "second" || d.Level() != LevelError || d.Format() != FormatText {
		t.Errorf("state = (%q, %v, %v), want (second, ERROR, text)", d.Library(), d.Level(), d.Format())
	}
}

func TestNew_UnknownLocalLevel(t *testing.T) {
	d, _, errOut := capture()
	d.Set(libName, "WARN")

	l := New(testLogName, WithDefaults(d), WithLevel("VERBOSE"))

	if _, ok := l.Level(); ok {
		t.Error("unknown level should leave the logger unpinned")
	}
	if got := l.EffectiveLevel(); got != LevelWarn {
		t.Errorf("EffectiveLevel() = %v, want %v", got, LevelWarn)
	}
	assertContainsAll(t, errOut.String(), `unrecognised log level "VERBOSE"`)
}

func TestNew_FormatSnapshot(t *testing.T) {
	d, out, _ := capture()
	d.Set(libName, "INFO")
	text := New("text", WithDefaults(d))

	d.Set(libName, "INFO", WithJSON(true))
	jsonLogger := New("json", WithDefaults(d))
	forcedText := New("forced", WithDefaults(d), WithJSON(false))

	tests := []struct {
		logger *Logger
		want   Format
	}{
		{text, FormatText},
		{jsonLogger, FormatJSON},
		{forcedText, FormatText},
	}
	for _, tt := range tests {
		if got := tt.logger.Format(); got != tt.want {
			t.Errorf("%s: Format() = %v, want %v", tt.logger.Module(), got, tt.want)
		}
	}

	text.Info("plain")
	if got, want := out.String(), "TestLibrary [INFO] text: plain\n"; got != want {
		t.Errorf("line = %q, want %q", got, want)
	}
}

func TestSubstitution(t *testing.T) {
	obj := map[string]any{"statusCode": 401, "message": "oops"}

	tests := []struct {
		name     string
		template string
		args     []any
		want     string
	}{
		{"object as string", "The %s has just returned an error code of %s", []any{"thing", obj},
			"The thing has just returned an error code of " + fmt.Sprint(obj)},
		{"sequence argument", "%s and %s", []any{[]any{"this", "that"}}, "this and that"},
		{"single argument", "The %s has returned", []any{"thing"}, "The thing has returned"},
		{"json placeholder", "response %j", []any{obj}, `response {"message":"oops","statusCode":401}`},
		{"missing argument", "%s then %s", []any{"one"}, "one then %s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, out, _ := capture()
			d.Set(libName, "INFO")

			New(testLogName, WithDefaults(d)).Info(tt.template, tt.args...)

			assertContainsAll(t, out.String(), tt.want)
		})
	}
}

func TestJSONOutput(t *testing.T) {
	fixed := time.Date(2016, 3, 1, 12, 30, 45, 123456789, time.FixedZone("CET", 3600))
	d, out, errOut := capture(WithClock(func() time.Time { return fixed }))
	d.Set(libName, "INFO", WithJSON(true))

	l := New(testLogName, WithDefaults(d))
	l.Info("hello <%s>", "world")
	l.Error("boom")

	want := `{"level":"INFO","logger_name":"TestLibrary","module_name":"TestModule","message":"hello <world>","@timestamp":"2016-03-01T11:30:45.123Z"}` + "\n"
	if got := out.String(); got != want {
		t.Errorf("info line = %s, want %s", got, want)
	}

	var env map[string]any
	if err := json.Unmarshal(errOut.Bytes(), &env); err != nil {
		t.Fatalf("error line is not JSON: %v\n%s", err, errOut.String())
	}
	if len(env) != 5 {
		t.Errorf("envelope has %d fields, want 5: %v", len(env), env)
	}
	for _, key := range []string{"level", "logger_name", "module_name", "message", "@timestamp"} {
		if _, ok := env[key].(string); !ok {
			t.Errorf("field %s = %v, want a string", key, env[key])
		}
	}
	if env["level"] != "ERROR" || env["message"] != "boom" {
		t.Errorf("envelope = %v, want level ERROR and message boom", env)
	}
}

func TestColorAlways(t *testing.T) {
	d, out, _ := capture(WithColor(ColorAlways))
	d.Set(libName, "INFO")

	New(testLogName, WithDefaults(d)).Info("colourful")

	assertContainsAll(t, out.String(), "\x1b[", "colourful")
}

func TestColorAuto_BufferIsPlain(t *testing.T) {
	t.Setenv("CLICOLOR_FORCE", "")
	os.Unsetenv("CLICOLOR_FORCE")

	d, out, _ := capture(WithColor(ColorAuto))
	d.Set(libName, "INFO")

	New(testLogName, WithDefaults(d)).Info("plain")

	if strings.Contains(out.String(), "\x1b[") {
		t.Errorf("escape codes written to a buffer: %q", out.String())
	}
}

type panicWriter struct{}

func (panicWriter) Write([]byte) (int, error) {
	panic("sink exploded")
}

func TestLog_NeverPanics(t *testing.T) {
	d := NewDefaults(WithOutput(panicWriter{}, panicWriter{}), WithColor(ColorNever))
	d.Set(libName, "TRACE")

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Log panicked: %v", r)
		}
	}()
	l := New(testLogName, WithDefaults(d))
	l.Info("x")
	l.Error("y")
}

func TestGlobalDefaults(t *testing.T) {
	var out, errOut bytes.Buffer
	prevLibrary, prevLevel := Global().Library(), Global().Level()
	t.Cleanup(func() {
		Global().Set(prevLibrary, prevLevel.String(), WithOutput(os.Stdout, os.Stderr))
	})

	SetGlobalDefaults(libName, "INFO", WithOutput(&out, &errOut), WithColor(ColorNever))
	New(testLogName).Info(testLogString)

	if got, want := out.String(), "TestLibrary [INFO] TestModule: "+testLogString+"\n"; got != want {
		t.Errorf("line = %q, want %q", got, want)
	}
}

func TestNewDefaults_InitialState(t *testing.T) {
	d := NewDefaults()
	if d.Level() != LevelDebug {
		t.Errorf("Level() = %v, want %v", d.Level(), LevelDebug)
	}
	if d.Format() != FormatText {
		t.Errorf("Format() = %v, want %v", d.Format(), FormatText)
	}
	assertContainsAll(t, d.Library(), "SetGlobalDefaults")
}

func TestForTest(t *testing.T) {
	d := ForTest(t, libName)
	if d.Level() != LevelTrace {
		t.Errorf("Level() = %v, want %v", d.Level(), LevelTrace)
	}

	l := New(testLogName, WithDefaults(d))
	l.Trace("trace from test logger")
	l.Error("error from test logger")
}

func TestTestWriter_TrimsNewline(t *testing.T) {
	tw := &testWriter{t: t}

	for _, in := range []string{"test message\n", ""} {
		n, err := tw.Write([]byte(in))
		if err != nil {
			t.Fatalf("Write(%q) error: %v", in, err)
		}
		if n != len(in) {
			t.Errorf("Write(%q) = %d, want %d", in, n, len(in))
		}
	}
}
