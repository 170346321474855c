// Package config loads persistent monitor defaults. Flags always win; these
// files only fill in what the operator did not pass on the command line.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Config holds the settable defaults for a monitoring session.
type Config struct {
	Device    string `json:"device"`    // default serial device path
	Baud      int    `json:"baud"`      // default baud rate
	Chip      string `json:"chip"`      // default chip name
	Framework string `json:"framework"` // default framework name
	Resolver  string `json:"resolver"`  // "addr2line" | "embedded"
}

// Defaults returns the built-in configuration values.
func Defaults() Config {
	return Config{
		Baud:     115200,
		Chip:     "esp32",
		Resolver: "addr2line",
	}
}

// LoadGlobal reads ~/.config/espmon/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".config", "espmon", "config.json")
	return loadFile(path, true)
}

// LoadProject reads .espmonrc in the current working directory — projects
// pin the board and chip they target. Returns nil (no error) if absent.
func LoadProject() (*Config, error) {
	return loadFile(".espmonrc", false)
}

// loadFile reads and parses a JSON config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()
	for _, c := range []*Config{global, project} {
		if c == nil {
			continue
		}
		if c.Device != "" {
			result.Device = c.Device
		}
		if c.Baud != 0 {
			result.Baud = c.Baud
		}
		if c.Chip != "" {
			result.Chip = c.Chip
		}
		if c.Framework != "" {
			result.Framework = c.Framework
		}
		if c.Resolver != "" {
			result.Resolver = c.Resolver
		}
	}
	return result
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
