package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoProgress is returned by Load when nothing has been saved yet.
var ErrNoProgress = errors.New("no saved progress")

// Backends accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Store persists the single UserProgress record.
type Store interface {
	Load() (*UserProgress, error) // returns ErrNoProgress if none exists
	Save(p *UserProgress) error
	Delete() error
	Close() error
}

// DataDir returns the forensim XDG data directory:
// $XDG_DATA_HOME/forensim or ~/.local/share/forensim.
func DataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "forensim"), nil
}

// Open returns the store for backend rooted at dir. An empty dir means
// DataDir(); an empty backend means JSON.
func Open(backend, dir string) (Store, error) {
	if dir == "" {
		d, err := DataDir()
		if err != nil {
			return nil, fmt.Errorf("resolving data directory: %w", err)
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	switch backend {
	case "", BackendJSON:
		return &fileStore{path: filepath.Join(dir, "progress.json")}, nil
	case BackendSQLite:
		return openSQLite(filepath.Join(dir, "progress.db"))
	default:
		return nil, fmt.Errorf("unknown progress backend %q", backend)
	}
}

// fileStore keeps the record in a JSON file.
type fileStore struct {
	path string
}

// Save marshals p to JSON and writes it atomically via a temp file + os.Rename.
func (f *fileStore) Save(p *UserProgress) (err error) {
	data, err := encode(p)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), "progress-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to persist progress: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to persist progress: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to persist progress: %w", err)
	}
	if err = os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to persist progress: %w", err)
	}
	return nil
}

// Load reads the progress file. Returns ErrNoProgress if it does not exist.
func (f *fileStore) Load() (*UserProgress, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoProgress
		}
		return nil, fmt.Errorf("failed to read progress: %w", err)
	}
	return decode(data)
}

func (f *fileStore) Delete() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete progress: %w", err)
	}
	return nil
}

func (f *fileStore) Close() error { return nil }

func encode(p *UserProgress) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to persist progress: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*UserProgress, error) {
	var p UserProgress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse progress: %w", err)
	}
	return p.Clone(), nil
}

// MemoryStore keeps the record in memory.
type MemoryStore struct {
	data []byte
	// Err, when set, is returned by Save.
	Err error
}

func (m *MemoryStore) Load() (*UserProgress, error) {
	if m.data == nil {
		return nil, ErrNoProgress
	}
	return decode(m.data)
}

func (m *MemoryStore) Save(p *UserProgress) error {
	if m.Err != nil {
		return m.Err
	}
	data, err := encode(p)
	if err != nil {
		return err
	}
	m.data = data
	return nil
}

func (m *MemoryStore) Delete() error {
	m.data = nil
	return nil
}

func (m *MemoryStore) Close() error { return nil }
