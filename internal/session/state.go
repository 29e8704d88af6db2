package session

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mozhi-it/LAN-Transfer/internal/config"
)

// State is what the client remembers between runs
type State struct {
	LastAddress string `yaml:"last_address,omitempty"`
	UserName    string `yaml:"user_name,omitempty"`
}

// StatePath is session.yaml next to the config file
func StatePath() string {
	dir := config.ConfigDir
	if dir == "" {
		dir = config.Dir()
	}
	return filepath.Join(dir, "session.yaml")
}

// LoadState reads path; a missing file is an empty State
func LoadState(path string) (State, error) {
	var st State
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return st, nil
	case err != nil:
		return st, fmt.Errorf("failed to read session file: %w", err)
	}
	if err := yaml.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("session file %s is corrupt: %w", path, err)
	}
	return st, nil
}

// SaveState replaces path with st. The file is written beside path and
// renamed so a crash never leaves half a file.
func SaveState(path string, st State) error {
	data, err := yaml.Marshal(st)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), config.DirPermissions); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".session-*")
	if err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), config.FilePermissions); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
