package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ErrConfigExists is returned by WriteTemplate when the target file exists
// and overwriting was not requested.
var ErrConfigExists = errors.New("config file already exists")

const templateHeader = `# flick configuration
#
# Precedence, lowest first: built-in defaults, $XDG_CONFIG_HOME/flick/config.toml,
# .flick/config.toml, --config, FLICK_* environment variables, command-line flags.
#
# training.kind: recycle-bin, new-folder, spreadsheet, word-document, text-document
# training.mode: count (stop after hit_count hits) or time (stop after
# duration_seconds, each target stays stay_time_ms before it counts as a miss)
# paths.trace: JSONL event trace for debugging; empty disables it

`

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg *Config) error {
	enc := toml.NewEncoder(w)
	enc.Indent = ""
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// WriteTemplate writes cfg with an explanatory header to path, creating
// parent directories. An existing file is only replaced when force is set.
func WriteTemplate(path string, cfg *Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, ErrConfigExists)
		}
	}

	var buf bytes.Buffer
	buf.WriteString(templateHeader)
	if err := Encode(&buf, cfg); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
