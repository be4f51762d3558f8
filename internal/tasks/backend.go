package tasks

import "context"

// Storage keys the task snapshot is written under
const (
	KeyTasks          = "tasks"
	KeyCompletedTasks = "completedTasks"
)

// Backend is a durable key-value store the task lists are mirrored to
type Backend interface {
	// Name returns the backend identifier (e.g., "sqlite", "file")
	Name() string

	// Get returns the value stored under key; ok is false when the key is absent
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Put writes every entry of a snapshot, overwriting prior values
	Put(ctx context.Context, entries map[string]string) error

	// Close releases any resources held by the backend
	Close() error
}

// BackendOptions carries the settings a backend factory may need
type BackendOptions struct {
	Path   string // database file for sqlite
	Driver string // sql driver name for sqlite ("sqlite3" or "sqlite")
	Dir    string // directory for the file backend
}

// BackendFactory is a function that opens a new instance of a Backend
type BackendFactory func(opts BackendOptions) (Backend, error)
