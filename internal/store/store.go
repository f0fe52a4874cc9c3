// Package store persists small string settings such as the OAuth token record.
//
// Three backends share the Settings interface: an in-memory map for tests and
// throwaway sessions, a JSON file written atomically, and a SQLite table.
package store

import (
	"errors"
	"fmt"

	"github.com/toozej/spotifyclone/pkg/config"
)

// ErrUnknownBackend is returned by Open for an unrecognised backend name.
var ErrUnknownBackend = errors.New("unknown settings backend")

// Settings is a flat key-value store.
type Settings interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	// Delete removes every given key. Missing keys are not an error.
	Delete(keys ...string) error
	Close() error
}

// Open builds the backend selected by cfg.
func Open(cfg config.SettingsConfig) (Settings, error) {
	if cfg.Backend == "memory" {
		return NewMemory(), nil
	}

	path, err := cfg.ResolvePath()
	if err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case "file", "":
		return NewFile(path)
	case "sqlite":
		return NewSQLite(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
