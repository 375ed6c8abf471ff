package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds all configurable forensim settings.
type Config struct {
	CasesDir        string `json:"cases_dir"`        // extra user case files, overlaid on the built-ins
	ProgressBackend string `json:"progress_backend"` // "json" | "sqlite"
	DataDir         string `json:"data_dir"`         // override $XDG_DATA_HOME/forensim
	ReportDir       string `json:"report_dir"`
	ReportFormat    string `json:"report_format"`   // "markdown" | "json"
	AssistantDelay  string `json:"assistant_delay"` // Go duration, e.g. "750ms"
	LogFile         string `json:"log_file"`
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		ProgressBackend: "json",
		ReportDir:       ".",
		ReportFormat:    "markdown",
		AssistantDelay:  "750ms",
	}
}

// Delay parses AssistantDelay. An empty value means no delay.
func (c Config) Delay() (time.Duration, error) {
	if c.AssistantDelay == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.AssistantDelay)
	if err != nil {
		return 0, fmt.Errorf("invalid assistant_delay %q: %w", c.AssistantDelay, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid assistant_delay %q: must not be negative", c.AssistantDelay)
	}
	return d, nil
}

// LoadGlobal reads ~/.config/forensim/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".config", "forensim", "config.json")
	return loadFile(path, true)
}

// LoadProject reads .forensimconfig in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(".forensimconfig", false)
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
	overlay(&result, global)
	overlay(&result, project)
	return result
}

func overlay(dst, src *Config) {
	if src == nil {
		return
	}
	set := func(d *string, s string) {
		if s != "" {
			*d = s
		}
	}
	set(&dst.CasesDir, src.CasesDir)
	set(&dst.ProgressBackend, src.ProgressBackend)
	set(&dst.DataDir, src.DataDir)
	set(&dst.ReportDir, src.ReportDir)
	set(&dst.ReportFormat, src.ReportFormat)
	set(&dst.AssistantDelay, src.AssistantDelay)
	set(&dst.LogFile, src.LogFile)
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
