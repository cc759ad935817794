package doctor

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/tracelog/internal/config"
	"github.com/thoreinstein/tracelog/internal/tty"
	"github.com/thoreinstein/tracelog/pkg/fileutil"
)

// maxSecureFilePerm is the most permissive mode a config file should have (-rw-r--r--).
const maxSecureFilePerm os.FileMode = 0o644

// ConfigFileCheck validates the syntax, keys, values and permissions of a
// config file.
type ConfigFileCheck struct {
	path string
}

var _ Check = (*ConfigFileCheck)(nil)

// NewConfigFileCheck creates a check for the config file at path. An empty
// path means no file was found.
func NewConfigFileCheck(path string) *ConfigFileCheck {
	return &ConfigFileCheck{path: path}
}

// Name returns the unique identifier for this check.
func (c *ConfigFileCheck) Name() string {
	return "config-file"
}

// Category returns the grouping for this check.
func (c *ConfigFileCheck) Category() string {
	return "config"
}

// Run executes the config file check.
func (c *ConfigFileCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"path": c.path},
	}

	if c.path == "" {
		result.Status = SeverityInfo
		result.Message = "no config file found, using defaults"
		result.FixHint = "Run: tracelog config init"
		delete(result.Details, "path")
		return result
	}

	info, err := os.Stat(c.path)
	if err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot access config file: %v", err)
		return result
	}
	result.Details["permissions"] = formatPermissions(info.Mode())

	data, err := fileutil.ReadFileWithLimit(c.path, config.MaxConfigSize)
	if err != nil {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot read config file: %v", err)
		return result
	}

	values, err := decode(c.path, data)
	if err != nil {
		result.Status = SeverityError
		result.Message = err.Error()
		result.FixHint = "Fix the syntax error, or run: tracelog config init --force"
		return result
	}

	cfg, unknown := merge(values)
	if errs := config.Validate(cfg); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		result.Status = SeverityError
		result.Message = strings.Join(msgs, "; ")
		result.FixHint = "Run: tracelog levels, then tracelog config edit"
		return result
	}

	if len(unknown) > 0 {
		result.Status = SeverityWarning
		result.Message = "unknown keys: " + strings.Join(unknown, ", ")
		result.Details["unknown_keys"] = unknown
		result.FixHint = "Valid keys: " + strings.Join(config.Keys, ", ")
		return result
	}

	if info.Mode().Perm()&^maxSecureFilePerm != 0 {
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("config file is writable by others (%s)", formatPermissions(info.Mode()))
		result.FixHint = fmt.Sprintf("chmod 600 %s", c.path)
		return result
	}

	result.Status = SeverityPass
	result.Message = "config file is valid"
	return result
}

// decode parses data in the format implied by the extension of path.
func decode(path string, data []byte) (map[string]any, error) {
	values := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &values); err != nil {
			return nil, errors.New(formatJSONError(err, data))
		}
	case ".toml":
		if err := toml.Unmarshal(data, &values); err != nil {
			return nil, errors.New(formatTOMLError(err))
		}
	default:
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, errors.Newf("YAML error: %v", err)
		}
	}
	return values, nil
}

// merge overlays values on the default config and returns the keys it does
// not recognise, sorted.
func merge(values map[string]any) (*config.Config, []string) {
	cfg := config.Default()
	fields := map[string]*string{
		config.KeyLibrary: &cfg.Library,
		config.KeyLevel:   &cfg.Level,
		config.KeyFormat:  &cfg.Format,
		config.KeyColor:   &cfg.Color,
	}

	var unknown []string
	for k, v := range values {
		field, ok := fields[strings.ToLower(k)]
		if !ok {
			unknown = append(unknown, k)
			continue
		}
		*field = fmt.Sprint(v)
	}
	slices.Sort(unknown)
	return cfg, unknown
}

// ConfigDirCheck verifies that the config directory is usable.
type ConfigDirCheck struct {
	dir string
}

var _ Check = (*ConfigDirCheck)(nil)

// NewConfigDirCheck creates a check for the config directory dir.
func NewConfigDirCheck(dir string) *ConfigDirCheck {
	return &ConfigDirCheck{dir: dir}
}

// Name returns the unique identifier for this check.
func (c *ConfigDirCheck) Name() string {
	return "config-dir"
}

// Category returns the grouping for this check.
func (c *ConfigDirCheck) Category() string {
	return "filesystem"
}

// Run executes the config directory check.
func (c *ConfigDirCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"path": c.dir},
	}

	info, err := os.Stat(c.dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		result.Status = SeverityInfo
		result.Message = "config directory does not exist yet"
		result.FixHint = "Run: tracelog config init"
		return result
	case err != nil:
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot access config directory: %v", err)
		return result
	case !info.IsDir():
		result.Status = SeverityError
		result.Message = "config path exists but is not a directory"
		return result
	}

	if err := isDirectoryWritable(c.dir); err != nil {
		result.Status = SeverityError
		result.Message = "config directory is not writable"
		result.FixHint = fmt.Sprintf("chmod 700 %s", c.dir)
		return result
	}

	result.Status = SeverityPass
	result.Message = "config directory is writable"
	return result
}

// isDirectoryWritable tests if a directory is writable by creating a temp file.
func isDirectoryWritable(path string) error {
	tmpFile, err := os.CreateTemp(path, ".tracelog-doctor-*")
	if err != nil {
		return err
	}

	tmpPath := tmpFile.Name()
	tmpFile.Close()
	return os.Remove(tmpPath)
}

// EnvCheck validates TRACELOG_* environment overrides.
type EnvCheck struct {
	lookup func(string) (string, bool)
}

var _ Check = (*EnvCheck)(nil)

// NewEnvCheck creates a check of the process environment.
func NewEnvCheck() *EnvCheck {
	return &EnvCheck{lookup: os.LookupEnv}
}

// Name returns the unique identifier for this check.
func (c *EnvCheck) Name() string {
	return "environment"
}

// Category returns the grouping for this check.
func (c *EnvCheck) Category() string {
	return "config"
}

// Run executes the environment check.
func (c *EnvCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	values := map[string]any{}
	set := map[string]any{}
	for _, key := range config.Keys {
		name := config.EnvPrefix + "_" + strings.ToUpper(key)
		if v, ok := c.lookup(name); ok {
			values[key] = v
			set[name] = v
		}
	}

	if len(set) == 0 {
		result.Status = SeverityPass
		result.Message = "no " + config.EnvPrefix + "_* overrides"
		return result
	}
	result.Details = set

	cfg, _ := merge(values)
	if errs := config.Validate(cfg); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		result.Status = SeverityError
		result.Message = strings.Join(msgs, "; ")
		result.FixHint = "Fix or unset the " + config.EnvPrefix + "_* variables"
		return result
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	slices.Sort(names)

	result.Status = SeverityPass
	result.Message = "overrides are valid: " + strings.Join(names, ", ")
	return result
}

// TerminalCheck reports whether text output to a writer will be coloured.
type TerminalCheck struct {
	name string
	out  io.Writer
}

var _ Check = (*TerminalCheck)(nil)

// NewTerminalCheck creates a check for the stream out, reported as name.
func NewTerminalCheck(name string, out io.Writer) *TerminalCheck {
	return &TerminalCheck{name: name, out: out}
}

// Name returns the unique identifier for this check.
func (c *TerminalCheck) Name() string {
	return "terminal-" + c.name
}

// Category returns the grouping for this check.
func (c *TerminalCheck) Category() string {
	return "terminal"
}

// Run executes the terminal check.
func (c *TerminalCheck) Run() *CheckResult {
	isTTY := tty.IsTTY(c.out)
	color := tty.SupportsColor(c.out)
	_, noColor := os.LookupEnv("NO_COLOR")

	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details: map[string]any{
			"tty":      isTTY,
			"color":    color,
			"TERM":     os.Getenv("TERM"),
			"NO_COLOR": noColor,
		},
	}

	switch {
	case color:
		result.Status = SeverityPass
		result.Message = c.name + " supports colour"
	case isTTY:
		result.Status = SeverityInfo
		result.Message = c.name + " is a terminal but colour is disabled"
	default:
		result.Status = SeverityInfo
		result.Message = c.name + " is not a terminal, text output is plain"
	}
	return result
}

// formatPermissions returns a human-readable permission string (e.g., "0644").
func formatPermissions(mode os.FileMode) string {
	return fmt.Sprintf("%04o", mode.Perm())
}

// formatJSONError extracts position information from JSON syntax errors.
func formatJSONError(err error, data []byte) string {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(data, int(syntaxErr.Offset))
		return fmt.Sprintf("JSON syntax error at line %d, column %d: %s", line, col, syntaxErr.Error())
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := offsetToLineCol(data, int(typeErr.Offset))
		return fmt.Sprintf("JSON type error at line %d, column %d: %s", line, col, typeErr.Error())
	}

	return fmt.Sprintf("JSON error: %v", err)
}

// formatTOMLError extracts position information from TOML decode errors.
func formatTOMLError(err error) string {
	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		return fmt.Sprintf("TOML syntax error at line %d, column %d: %s",
			row, col, decodeErr.Error())
	}

	return fmt.Sprintf("TOML error: %v", err)
}

// offsetToLineCol converts a byte offset to 1-indexed line and column numbers.
func offsetToLineCol(data []byte, offset int) (line, col int) {
	offset = max(0, min(offset, len(data)))

	line = 1
	lineStart := 0
	for i := range offset {
		if data[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	return line, offset - lineStart + 1
}
