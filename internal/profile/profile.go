// Package profile manages the investigator's persistent forensim profile.
// The profile is stored at ~/.config/forensim/profile.json and is created
// once via the interactive setup flow, then referenced on every command.
package profile

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fakeyudi/forensim/internal/config"
)

// Profile holds user-level preferences set during first-run setup.
type Profile struct {
	Name            string `json:"name"`             // shown in case reports
	ProgressBackend string `json:"progress_backend"` // "json" | "sqlite"
	ReportFormat    string `json:"report_format"`    // "markdown" | "json"
}

// profilePath returns the path to the profile file.
func profilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "profile.json"), nil
}

// ConfigDir returns the forensim config directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "forensim"), nil
}

// Exists reports whether a profile file is present on disk.
func Exists() bool {
	p, err := profilePath()
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// Load reads the profile from disk. Returns an error if the file is missing or malformed.
func Load() (*Profile, error) {
	p, err := profilePath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("profile not found, run 'forensim setup' to configure: %w", err)
	}
	var prof Profile
	if err := json.Unmarshal(data, &prof); err != nil {
		return nil, fmt.Errorf("malformed profile at %s: %w", p, err)
	}
	return &prof, nil
}

// Save writes the profile to disk, creating the config directory if needed.
func Save(prof *Profile) error {
	p, err := profilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(prof, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

// Apply fills settings the config files left at their defaults with the
// profile's preferences. Explicit config values win.
func (p *Profile) Apply(cfg config.Config) config.Config {
	if p == nil {
		return cfg
	}
	d := config.Defaults()
	if p.ProgressBackend != "" && cfg.ProgressBackend == d.ProgressBackend {
		cfg.ProgressBackend = p.ProgressBackend
	}
	if p.ReportFormat != "" && cfg.ReportFormat == d.ReportFormat {
		cfg.ReportFormat = p.ReportFormat
	}
	return cfg
}

// RunSetup runs the interactive setup wizard and returns the resulting
// profile. If existing is non-nil, it is used as the default for each prompt
// (edit mode).
func RunSetup(in io.Reader, out io.Writer, existing *Profile) (*Profile, error) {
	r := bufio.NewReader(in)

	ask := func(prompt, defaultVal string) (string, error) {
		if defaultVal != "" {
			fmt.Fprintf(out, "%s [%s]: ", prompt, defaultVal)
		} else {
			fmt.Fprintf(out, "%s: ", prompt)
		}
		line, err := r.ReadString('\n')
		if err != nil && !(err == io.EOF && line != "") {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return defaultVal, nil
		}
		return line, nil
	}

	prof := &Profile{
		ProgressBackend: "json",
		ReportFormat:    "markdown",
	}
	if existing != nil {
		*prof = *existing
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "  ┌─────────────────────────────────┐")
	fmt.Fprintln(out, "  │   forensim · first-time setup   │")
	fmt.Fprintln(out, "  └─────────────────────────────────┘")
	fmt.Fprintln(out)

	var err error

	prof.Name, err = ask("  Investigator name (shown in reports)", prof.Name)
	if err != nil {
		return nil, err
	}

	backend, err := ask("  Progress storage (json/sqlite)", prof.ProgressBackend)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(backend, "sqlite") {
		prof.ProgressBackend = "sqlite"
	} else {
		prof.ProgressBackend = "json"
	}

	format, err := ask("  Report format (markdown/json)", prof.ReportFormat)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(format, "json") {
		prof.ReportFormat = "json"
	} else {
		prof.ReportFormat = "markdown"
	}

	fmt.Fprintln(out)
	return prof, nil
}
