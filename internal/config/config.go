// Package config provides configuration management for tracelog using Viper.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/thoreinstein/tracelog/internal/errors"
	"github.com/thoreinstein/tracelog/internal/paths"
	"github.com/thoreinstein/tracelog/pkg/fileutil"
	"github.com/thoreinstein/tracelog/pkg/tracelog"
)

// EnvPrefix prefixes environment overrides, e.g. TRACELOG_LEVEL.
const EnvPrefix = "TRACELOG"

// MaxConfigSize bounds the size of a config file.
const MaxConfigSize = 64 * 1024

// Configuration keys.
const (
	KeyLibrary = "library"
	KeyLevel   = "level"
	KeyFormat  = "format"
	KeyColor   = "color"
)

// Keys lists every configuration key in display order.
var Keys = []string{KeyLibrary, KeyLevel, KeyFormat, KeyColor}

// localConfigName is looked up in the working directory before ConfigDir.
const localConfigName = "tracelog"

// Config holds the global defaults applied to tracelog at startup.
type Config struct {
	Library string `mapstructure:"library" yaml:"library" toml:"library" json:"library"`
	Level   string `mapstructure:"level" yaml:"level" toml:"level" json:"level"`
	Format  string `mapstructure:"format" yaml:"format" toml:"format" json:"format"`
	Color   string `mapstructure:"color" yaml:"color" toml:"color" json:"color"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Library: "tracelog",
		Level:   tracelog.LevelInfo.String(),
		Format:  string(tracelog.FormatText),
		Color:   string(tracelog.ColorAuto),
	}
}

// fileUsed is the config file read by the last Load, if any.
var fileUsed string

// Init resets Viper and installs defaults and environment overrides.
// Call this once at application startup before accessing config values.
func Init() {
	viper.Reset()
	fileUsed = ""

	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	def := Default()
	viper.SetDefault(KeyLibrary, def.Library)
	viper.SetDefault(KeyLevel, def.Level)
	viper.SetDefault(KeyFormat, def.Format)
	viper.SetDefault(KeyColor, def.Color)
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file and a missing file is
// an error. If path is empty, it tries ./tracelog.{yaml,yml,toml,json} and then
// paths.FindConfigFile, falling back to defaults when neither exists.
// The result is validated.
func Load(path string) (*Config, error) {
	file := path
	if file == "" {
		file = FindFile()
	}

	if file != "" {
		if err := readFile(file); err != nil {
			if path != "" && errors.Is(err, os.ErrNotExist) {
				return nil, errors.Wrapf(errors.ErrNotFound, "config file %s", path)
			}
			return nil, err
		}
		fileUsed = file
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Wrap(errs[0], "validating config")
	}

	return &cfg, nil
}

// FileUsed returns the config file read by the last Load, or "".
func FileUsed() string {
	return fileUsed
}

// FindFile returns the config file Load("") would read: ./tracelog.<ext>
// first, then paths.FindConfigFile. It returns "" when there is none.
func FindFile() string {
	for _, ext := range paths.ConfigExtensions {
		p := localConfigName + ext
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return paths.FindConfigFile()
}

func readFile(file string) error {
	data, err := fileutil.ReadFileWithLimit(file, MaxConfigSize)
	if err != nil {
		return err
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file), "."))
	if ext == "" {
		ext = "yaml"
	}
	viper.SetConfigType(ext)

	if err := viper.ReadConfig(bytes.NewReader(data)); err != nil {
		return errors.Wrapf(err, "reading config file %s", file)
	}
	return nil
}

// Save writes cfg to path, creating parent directories. The encoding follows
// the extension (.yaml, .yml, .toml or .json).
func Save(path string, cfg *Config) error {
	if err := paths.EnsureDir(filepath.Dir(path), 0); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	if err := fileutil.AtomicWriteEncoded(path, cfg, 0o600); err != nil {
		return errors.Wrapf(err, "writing config file %s", path)
	}
	return nil
}

// Apply makes cfg the configuration of d. cfg is expected to be valid; an
// invalid level still degrades to INFO inside tracelog. Extra options, such as
// WithOutput, are passed through to d.Set.
func Apply(cfg *Config, d *tracelog.Defaults, opts ...tracelog.Option) {
	opts = append([]tracelog.Option{
		tracelog.WithJSON(tracelog.Format(cfg.Format) == tracelog.FormatJSON),
		tracelog.WithColor(tracelog.ColorMode(cfg.Color)),
	}, opts...)
	d.Set(cfg.Library, cfg.Level, opts...)
}
