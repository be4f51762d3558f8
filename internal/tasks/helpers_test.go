package tasks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingBackend is a MemoryBackend that remembers every Put and can be
// made to block or fail. getErr fails reads of the listed keys.
type recordingBackend struct {
	*MemoryBackend

	mu      sync.Mutex
	puts    []map[string]string
	gate    chan struct{} // when set, each Put waits for a receive
	started chan struct{} // when set, each Put signals before waiting
	err     error
	getErr  map[string]error
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{MemoryBackend: NewMemoryBackend()}
}

func (b *recordingBackend) Put(ctx context.Context, entries map[string]string) error {
	if b.started != nil {
		b.started <- struct{}{}
	}
	if b.gate != nil {
		select {
		case <-b.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	b.mu.Lock()
	b.puts = append(b.puts, entries)
	err := b.err
	b.mu.Unlock()

	if err != nil {
		return err
	}
	return b.MemoryBackend.Put(ctx, entries)
}

func (b *recordingBackend) Get(ctx context.Context, key string) (string, bool, error) {
	if err := b.getErr[key]; err != nil {
		return "", false, err
	}
	return b.MemoryBackend.Get(ctx, key)
}

func (b *recordingBackend) putCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.puts)
}

func (b *recordingBackend) lastPut() map[string]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.puts) == 0 {
		return nil
	}
	return b.puts[len(b.puts)-1]
}

var errDiskFull = errors.New("disk full")

// sequentialIDs returns t1, t2, ... so tests can name tasks
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return "t" + strconv.Itoa(n)
	}
}

func newTestStore(t *testing.T, backend Backend, mode Mode) *Store {
	t.Helper()
	s := NewStore(backend,
		WithMode(mode),
		WithLogger(discardLogger()),
		WithIDFunc(sequentialIDs()),
	)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Close(ctx)
	})
	return s
}

func flush(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
}
