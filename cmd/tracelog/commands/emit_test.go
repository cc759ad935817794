package commands

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/tracelog/internal/errors"
	"github.com/thoreinstein/tracelog/pkg/tracelog"
)

func TestEmit_Sinks(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		wantStdout string
		wantStderr string
	}{
		{"info to stdout", "INFO", "svc [INFO] server: up\n", ""},
		{"warn to stdout", "WARN", "svc [WARN] server: up\n", ""},
		{"error to stderr", "ERROR", "", "svc [ERROR] server: up\n"},
		{"fatal to stderr", "FATAL", "", "svc [FATAL] server: up\n"},
		{"debug dropped", "DEBUG", "", ""},
		{"trace dropped", "TRACE", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)

			stdout, stderr, err := execute(t, "", "--library", "svc", "emit", tt.level, "server", "up")
			require.NoError(t, err)
			assert.Equal(t, tt.wantStdout, stdout)
			assert.Equal(t, tt.wantStderr, stderr)
		})
	}
}

func TestEmit_Arguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "string argument",
			args: []string{"listening on %s", ":8080"},
			want: "listening on :8080",
		},
		{
			name: "object argument as json",
			args: []string{"request failed: %j", `{"status":502,"msg":"bad gateway"}`},
			want: `request failed: {"msg":"bad gateway","status":502}`,
		},
		{
			name: "number argument",
			args: []string{"took %dms", "812"},
			want: "took 812ms",
		},
		{
			name: "quoted json string",
			args: []string{"%s", `"quoted"`},
			want: "quoted",
		},
		{
			name: "missing argument stays literal",
			args: []string{"%s and %s", "one"},
			want: "one and %s",
		},
		{
			name: "surplus arguments ignored",
			args: []string{"only %s", "a", "b"},
			want: "only a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)

			args := append([]string{"emit", "INFO", "m"}, tt.args...)
			stdout, _, err := execute(t, "", args...)
			require.NoError(t, err)
			assert.Equal(t, "tracelog [INFO] m: "+tt.want+"\n", stdout)
		})
	}
}

func TestEmit_SubModules(t *testing.T) {
	isolate(t)

	stdout, _, err := execute(t, "",
		"emit", "DEBUG", "db", "slow query", "--sub", "pool", "--sub", "conn", "--module-level", "TRACE")
	require.NoError(t, err)
	assert.Equal(t, "tracelog [DEBUG] db>pool>conn: slow query\n", stdout)
}

func TestEmit_ModuleLevelRestricts(t *testing.T) {
	isolate(t)

	stdout, _, err := execute(t, "", "--level", "TRACE", "emit", "INFO", "db", "x", "--module-level", "ERROR")
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestEmit_JSON(t *testing.T) {
	isolate(t)

	stdout, _, err := execute(t, "", "--json", "--library", "svc", "emit", "WARN", "server", "disk at %d%%", "91")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &got), "output: %s", stdout)
	assert.Len(t, got, 5)
	assert.Equal(t, "WARN", got["level"])
	assert.Equal(t, "svc", got["logger_name"])
	assert.Equal(t, "server", got["module_name"])
	assert.Equal(t, "disk at 91%", got["message"])
	assert.IsType(t, "", got["@timestamp"])
	assert.True(t, strings.HasSuffix(got["@timestamp"].(string), "Z"))
}

func TestEmit_InvalidLevel(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown level", []string{"emit", "LOUD", "m", "x"}},
		{"lower-case level", []string{"emit", "info", "m", "x"}},
		{"unknown module level", []string{"emit", "INFO", "m", "x", "--module-level", "NOISY"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)

			_, _, err := execute(t, "", tt.args...)
			require.Error(t, err)
			assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
			assert.True(t, errors.Is(err, tracelog.ErrUnknownLevel), "got %v", err)
		})
	}
}

func TestEmit_TooFewArgs(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "", "emit", "INFO", "m")
	require.Error(t, err)
}

func TestDecodeArg(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"plain", "plain"},
		{"42", json.Number("42")},
		{"true", true},
		{"null", nil},
		{`"s"`, "s"},
		{`{"a":1}`, map[string]any{"a": json.Number("1")}},
		{"[1,2]", []any{json.Number("1"), json.Number("2")}},
		{"1 2", "1 2"},
		{"{broken", "{broken"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeArg(tt.in))
		})
	}
}
