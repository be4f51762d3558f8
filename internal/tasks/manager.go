package tasks

import (
	"fmt"
	"log/slog"
)

// backendPreference is the order backends are tried in when none is named
var backendPreference = []string{"sqlite", "file", "memory"}

// Manager handles storage backend selection
type Manager struct {
	backend Backend
}

// NewManager opens the named backend.
// If backendName is empty, it tries the preferred backends in order and
// falls back to memory so the list stays usable without durable storage.
// Skipped backends are reported to logger; nil means slog.Default().
func NewManager(backendName string, opts BackendOptions, logger *slog.Logger) (*Manager, error) {
	return newManager(defaultRegistry, backendName, opts, logger)
}

func newManager(r *Registry, backendName string, opts BackendOptions, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if backendName != "" {
		backend, err := r.Create(backendName, opts)
		if err != nil {
			return nil, fmt.Errorf("creating backend %s: %w", backendName, err)
		}
		return &Manager{backend: backend}, nil
	}

	for _, name := range backendPreference {
		b, err := r.Create(name, opts)
		if err != nil {
			logger.Warn("storage backend unavailable", slog.String("backend", name), slog.Any("err", err))
			continue
		}
		return &Manager{backend: b}, nil
	}

	logger.Warn("no storage backend opened, tasks will not survive a restart")
	return &Manager{backend: NewMemoryBackend()}, nil
}

// Backend returns the current backend
func (m *Manager) Backend() Backend {
	return m.backend
}

// Name returns the name of the current backend
func (m *Manager) Name() string {
	return m.backend.Name()
}

// Close closes the current backend
func (m *Manager) Close() error {
	return m.backend.Close()
}
