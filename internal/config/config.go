package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds user preferences for procedure selection and other settings.
type Config struct {
	// Preferences maps a procedure code to the version the user last worked with.
	Preferences map[string]string `json:"preferences"`
	// CatalogDir points to a directory of variant documents that replaces
	// the embedded catalog when set.
	CatalogDir string `json:"catalogDir,omitempty"`
}

// defaultPath returns the path to the configuration file in the user's home directory.
func defaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".zollpilot.json"), nil
}

// Load reads the configuration from disk. If the file does not exist, it returns
// a Config with empty preferences.
func Load() (*Config, error) {
	path, err := defaultPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{Preferences: make(map[string]string)}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Preferences == nil {
		cfg.Preferences = make(map[string]string)
	}
	return &cfg, nil
}

// Save writes the configuration to disk. The file is replaced atomically, so
// a concurrent Load sees either the old or the new preferences.
func Save(cfg *Config) error {
	path, err := defaultPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".zollpilot-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// SetPreference records the version chosen for the given procedure code.
func (c *Config) SetPreference(code, version string) {
	if c.Preferences == nil {
		c.Preferences = make(map[string]string)
	}
	c.Preferences[code] = version
}

// PreferredVersion returns the preferred version for the given procedure code, if any.
func (c *Config) PreferredVersion(code string) (string, bool) {
	v, ok := c.Preferences[code]
	return v, ok
}
