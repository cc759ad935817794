package tracelog

import "testing"

// testWriter adapts testing.TB to io.Writer.
type testWriter struct {
	t testing.TB
}

// Write implements io.Writer by logging to the test.
func (w *testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	// Trim trailing newline since t.Log adds its own
	msg := string(p)
	if len(msg) > 0 && msg[len(msg)-1] == '\n' {
		msg = msg[:len(msg)-1]
	}
	w.t.Log(msg)
	return len(p), nil
}

// ForTest returns Defaults at TRACE whose sinks write to the test's log, so
// output shows up only on failure or with -v. Bind loggers to it with
// WithDefaults.
func ForTest(t testing.TB, library string) *Defaults {
	t.Helper()
	w := &testWriter{t: t}
	d := NewDefaults(WithOutput(w, w), WithColor(ColorNever))
	d.Set(library, LevelTrace.String())
	return d
}
