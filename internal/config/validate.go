package config

import (
	"errors"

	"github.com/thoreinstein/tracelog/pkg/tracelog"
)

// Validation errors for configuration fields.
var (
	// ErrEmptyLibrary indicates the library name is blank.
	ErrEmptyLibrary = errors.New("library name must not be empty")

	// ErrInvalidLevel indicates a level outside the level table.
	ErrInvalidLevel = errors.New("invalid level")

	// ErrInvalidFormat indicates an output format other than text or json.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidColor indicates a colour mode other than auto, always or never.
	ErrInvalidColor = errors.New("invalid color mode")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Library == "" {
		errs = append(errs, ErrEmptyLibrary)
	}

	if _, err := tracelog.ParseLevel(cfg.Level); err != nil {
		errs = append(errs, &FieldError{Field: KeyLevel, Value: cfg.Level, Err: ErrInvalidLevel})
	}

	switch tracelog.Format(cfg.Format) {
	case tracelog.FormatText, tracelog.FormatJSON:
	default:
		errs = append(errs, &FieldError{Field: KeyFormat, Value: cfg.Format, Err: ErrInvalidFormat})
	}

	switch tracelog.ColorMode(cfg.Color) {
	case tracelog.ColorAuto, tracelog.ColorAlways, tracelog.ColorNever:
	default:
		errs = append(errs, &FieldError{Field: KeyColor, Value: cfg.Color, Err: ErrInvalidColor})
	}

	return errs
}

// FieldError represents an error for a specific configuration field.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Err.Error() + ": " + e.Field + "=" + e.Value
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
