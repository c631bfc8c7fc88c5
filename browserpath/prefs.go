package browserpath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Prefs is the persisted browser choice.
type Prefs struct {
	Browser Kind   `yaml:"browser"`
	Path    string `yaml:"path,omitempty"`
}

// IsZero reports whether no choice has been saved.
func (p Prefs) IsZero() bool {
	return p.Browser == "" && p.Path == ""
}

// LoadPrefs reads the preference file. A missing file yields zero Prefs.
func LoadPrefs(path string) (Prefs, error) {
	var prefs Prefs

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return prefs, nil
	}
	if err != nil {
		return prefs, err
	}

	if err := yaml.Unmarshal(data, &prefs); err != nil {
		return Prefs{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if prefs.Browser != "" {
		if _, err := ParseKind(string(prefs.Browser)); err != nil {
			return Prefs{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return prefs, nil
}

// SavePrefs writes prefs to path, creating the parent directory.
func SavePrefs(path string, prefs Prefs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(prefs)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ClearPrefs removes the preference file. Removing a missing file is not an error.
func ClearPrefs(path string) error {
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
