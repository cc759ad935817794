// Package fileutil provides atomic file writes and bounded reads for
// configuration files.
package fileutil

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/tracelog/internal/errors"
)

// ErrUnsupportedFormat is returned by Marshal for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// AtomicWriteFile writes data to a file atomically using a temp file + rename pattern.
// This ensures interrupted writes leave the original file intact.
//
// The caller is responsible for ensuring the parent directory exists.
// Permissions are applied to the final file via the perm parameter.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	// Create temp file in same directory for atomic rename (same filesystem required)
	tmp, err := os.CreateTemp(dir, ".tracelog-atomic-*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}

	tmpName := tmp.Name()
	defer func() {
		// Only remove if rename failed (file still exists)
		if _, statErr := os.Stat(tmpName); statErr == nil {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing temp file")
	}

	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return errors.Wrap(err, "setting file permissions")
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}

	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "renaming temp file")
	}

	return nil
}

// Marshal encodes v in the format implied by the extension of path:
// .yaml/.yml (yaml.v3), .toml (go-toml) or .json (2-space indent).
// The result always ends in a newline.
func Marshal(path string, v any) (data []byte, err error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		// yaml.Marshal panics on unmarshalable types; recover and return error
		defer func() {
			if r := recover(); r != nil {
				err = errors.Newf("marshaling YAML: %v", r)
			}
		}()
		data, err = yaml.Marshal(v)
		if err != nil {
			return nil, errors.Wrap(err, "marshaling YAML")
		}
	case ".toml":
		var buf bytes.Buffer
		enc := toml.NewEncoder(&buf)
		if err := enc.Encode(v); err != nil {
			return nil, errors.Wrap(err, "marshaling TOML")
		}
		data = buf.Bytes()
	case ".json":
		data, err = json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "marshaling JSON")
		}
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%q", filepath.Ext(path))
	}

	// Add trailing newline for POSIX compliance
	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	return data, nil
}

// AtomicWriteEncoded marshals v according to the extension of path (see
// Marshal) and writes it atomically with the given permissions.
//
// The caller is responsible for ensuring the parent directory exists.
func AtomicWriteEncoded(path string, v any, perm os.FileMode) error {
	data, err := Marshal(path, v)
	if err != nil {
		return err
	}
	return AtomicWriteFile(path, data, perm)
}
