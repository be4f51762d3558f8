package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/pdxmph/todo-tui/internal/tasks"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Backend stores each key as <dir>/<key>.json
type Backend struct {
	dir string
}

// NewBackend creates the directory if needed and returns a file backend rooted there
func NewBackend(dir string) (*Backend, error) {
	if dir == "" {
		return nil, fmt.Errorf("file backend needs a directory")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &Backend{dir: dir}, nil
}

// Name returns the backend identifier
func (b *Backend) Name() string {
	return "file"
}

// Dir returns the storage directory
func (b *Backend) Dir() string {
	return b.dir
}

func (b *Backend) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(b.dir, key+".json"), nil
}

// Get reads the file for key
func (b *Backend) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	p, err := b.path(key)
	if err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading %s: %w", p, err)
	}
	return string(data), true, nil
}

// Put writes each entry to a temp file and renames it into place, so a reader
// never sees a half-written value
func (b *Backend) Put(ctx context.Context, entries map[string]string) error {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.writeFile(k, entries[k]); err != nil {
			return err
		}
	}
	return nil
}

func (b *Backend) writeFile(key, value string) error {
	p, err := b.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(b.dir, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", key, err)
	}

	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("replacing %s: %w", p, err)
	}
	return nil
}

// Close is a no-op; files are closed after every write
func (b *Backend) Close() error {
	return nil
}

// Register the file backend
func init() {
	tasks.Register("file", func(opts tasks.BackendOptions) (tasks.Backend, error) {
		return NewBackend(opts.Dir)
	})
}
