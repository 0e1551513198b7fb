package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

type Prefs struct {
	Theme string `yaml:"theme"`
}

// Store persists the client's preferences in a single YAML file.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath is prefs.yaml under the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "genstudio", "prefs.yaml"), nil
}

// Load returns the saved preferences, or the defaults when nothing is saved yet.
func (s *Store) Load() (Prefs, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (Prefs, error) {
	p := Prefs{Theme: ThemeDark}

	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("error reading prefs: %w", err)
	}
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Prefs{Theme: ThemeDark}, fmt.Errorf("error parsing prefs: %w", err)
	}
	if p.Theme != ThemeLight {
		p.Theme = ThemeDark
	}
	return p, nil
}

func (s *Store) save(p Prefs) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("error creating prefs dir: %w", err)
	}
	b, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("error writing prefs: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// ToggleTheme flips between dark and light, persists the result and returns it.
func (s *Store) ToggleTheme() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.load()
	if err != nil {
		return p.Theme, err
	}
	if p.Theme == ThemeDark {
		p.Theme = ThemeLight
	} else {
		p.Theme = ThemeDark
	}
	return p.Theme, s.save(p)
}
