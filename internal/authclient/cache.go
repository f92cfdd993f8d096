package authclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// State is what survives between runs: the signed-in role, the identity the
// dashboard returned, and the session token.
type State struct {
	Role     string   `json:"role"`
	Identity Identity `json:"identity"`
	Token    string   `json:"token,omitempty"`
}

// Cache persists State. Load returns (nil, nil) when nothing is stored.
type Cache interface {
	Load() (*State, error)
	Save(State) error
	Clear() error
}

// FileCache stores State as JSON at Path, readable only by the owner.
type FileCache struct {
	Path string
}

// DefaultCachePath returns ~/.agreeverse/session.json.
func DefaultCachePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".agreeverse", "session.json"), nil
}

func (c FileCache) Load() (*State, error) {
	data, err := os.ReadFile(c.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session cache: %w", err)
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse session cache: %w", err)
	}
	return &s, nil
}

// Save writes through a temp file so a crash never leaves a torn cache.
func (c FileCache) Save(s State) error {
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o700); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session cache: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(c.Path), ".session-*")
	if err != nil {
		return fmt.Errorf("write session cache: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session cache: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("write session cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write session cache: %w", err)
	}
	return os.Rename(tmp.Name(), c.Path)
}

func (c FileCache) Clear() error {
	if err := os.Remove(c.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear session cache: %w", err)
	}
	return nil
}
