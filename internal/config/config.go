// Package config loads the sheetcalc configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// print modes
const (
	PrintValues = "values"
	PrintTexts  = "texts"
)

// Config is the sheetcalc configuration. every field has a default, so an
// absent file is the same as an empty one.
type Config struct {
	Log   LogConfig   `yaml:"log"`
	REPL  REPLConfig  `yaml:"repl"`
	Print PrintConfig `yaml:"print"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`
}

type REPLConfig struct {
	Prompt string `yaml:"prompt"`
	// HistoryFile is where line history is kept between sessions. empty
	// disables history.
	HistoryFile string `yaml:"history_file"`
}

type PrintConfig struct {
	// Mode selects what "print" shows without an argument: values or texts
	Mode string `yaml:"mode"`
}

// Defaults returns the built-in configuration
func Defaults() Config {
	return Config{
		Log:   LogConfig{Level: "warn"},
		REPL:  REPLConfig{Prompt: "sheet> "},
		Print: PrintConfig{Mode: PrintValues},
	}
}

// Load reads the YAML file at path on top of Defaults. an empty path returns
// Defaults. the result is not validated, so that callers can apply their
// overrides first and call Validate on the merged config.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read the config file: %w", err)
	}
	if err := Decode(bytes.NewReader(data), &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads YAML from r into cfg, rejecting fields it does not know.
func Decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks the enumerated fields.
func (c Config) Validate() error {
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Print.Mode {
	case PrintValues, PrintTexts:
	default:
		return fmt.Errorf("print.mode must be %q or %q, got %q", PrintValues, PrintTexts, c.Print.Mode)
	}
	return nil
}

// ParseLevel maps a level name to its slog level
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", name)
	}
	return level, nil
}
