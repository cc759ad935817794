package tty

import (
	"bytes"
	"os"
	"testing"
)

func TestSupportsColor(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		isTTY bool
		want  bool
	}{
		{
			name:  "tty with clean env",
			env:   map[string]string{},
			isTTY: true,
			want:  true,
		},
		{
			name:  "NO_COLOR prevents color",
			env:   map[string]string{"NO_COLOR": "1"},
			isTTY: true,
			want:  false,
		},
		{
			name:  "TERM=dumb prevents color",
			env:   map[string]string{"TERM": "dumb"},
			isTTY: true,
			want:  false,
		},
		{
			name:  "non-TTY prevents color",
			env:   map[string]string{},
			isTTY: false,
			want:  false,
		},
		{
			name:  "CLICOLOR_FORCE overrides non-TTY",
			env:   map[string]string{"CLICOLOR_FORCE": "1"},
			isTTY: false,
			want:  true,
		},
		{
			name:  "CLICOLOR_FORCE overrides NO_COLOR",
			env:   map[string]string{"CLICOLOR_FORCE": "1", "NO_COLOR": "1"},
			isTTY: false,
			want:  true,
		},
		{
			name:  "CLICOLOR_FORCE=0 is ignored",
			env:   map[string]string{"CLICOLOR_FORCE": "0"},
			isTTY: false,
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// t.Setenv restores the previous values when the subtest ends.
			for _, k := range []string{"NO_COLOR", "TERM", "CLICOLOR_FORCE"} {
				t.Setenv(k, "")
				os.Unsetenv(k)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got := supportsColor(tt.isTTY)
			if got != tt.want {
				t.Errorf("supportsColor() = %v, want %v (env=%v, isTTY=%v)", got, tt.want, tt.env, tt.isTTY)
			}
		})
	}
}

func TestIsTTY_NonFile(t *testing.T) {
	var buf bytes.Buffer
	if IsTTY(&buf) {
		t.Error("IsTTY should return false for a bytes.Buffer")
	}
}

func TestSupportsColor_Buffer(t *testing.T) {
	t.Setenv("CLICOLOR_FORCE", "")
	os.Unsetenv("CLICOLOR_FORCE")

	var buf bytes.Buffer
	if SupportsColor(&buf) {
		t.Error("SupportsColor should return false for a non-terminal writer")
	}
}
