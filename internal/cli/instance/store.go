// Package instance stores which server the put CLI talks to and
// verifies that a candidate URL really is one before it is saved.
package instance

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// ConfigDirName is the dot directory under the user's home.
	ConfigDirName = ".put"
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "config.json"
	// FilePermissions for the config file (it may hold an auth token).
	FilePermissions = 0600
	// DirPermissions for the config directory.
	DirPermissions = 0700
)

// ErrNoInstance indicates no instance has been configured yet.
var ErrNoInstance = errors.New("no instance configured - run 'put instance set <url>' first")

// Instance is the connection target of the CLI.
type Instance struct {
	URL   string `json:"url"`
	Token string `json:"token,omitempty"`

	// Version is the server version reported when the instance was set.
	Version string `json:"version,omitempty"`
}

// Config is the on-disk shape of ~/.put/config.json.
type Config struct {
	Instance *Instance `json:"instance,omitempty"`
}

// Store manages the CLI configuration file.
type Store struct {
	configPath string
	config     *Config
}

// NewStore opens the store at ~/.put/config.json, creating an empty
// in-memory config when the file does not exist yet.
func NewStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}
	return NewStoreAt(filepath.Join(home, ConfigDirName, ConfigFileName))
}

// NewStoreAt opens the store at an explicit path.
func NewStoreAt(path string) (*Store, error) {
	store := &Store{configPath: path}

	if err := store.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		store.config = &Config{}
	}

	return store, nil
}

// load reads the config from disk.
func (s *Store) load() error {
	data, err := os.ReadFile(s.configPath)
	if err != nil {
		return err
	}

	s.config = &Config{}
	if err := json.Unmarshal(data, s.config); err != nil {
		return fmt.Errorf("corrupt config at %s: %w", s.configPath, err)
	}
	return nil
}

// save writes the config to disk.
func (s *Store) save() error {
	dir := filepath.Dir(s.configPath)
	if err := os.MkdirAll(dir, DirPermissions); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(s.config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.configPath, data, FilePermissions)
}

// Current returns the configured instance.
func (s *Store) Current() (*Instance, error) {
	if s.config.Instance == nil || s.config.Instance.URL == "" {
		return nil, ErrNoInstance
	}
	return s.config.Instance, nil
}

// Set records the instance and persists it.
func (s *Store) Set(inst *Instance) error {
	s.config.Instance = inst
	return s.save()
}

// Clear drops the configured instance.
func (s *Store) Clear() error {
	s.config.Instance = nil
	return s.save()
}

// ConfigPath returns the path to the config file.
func (s *Store) ConfigPath() string {
	return s.configPath
}
