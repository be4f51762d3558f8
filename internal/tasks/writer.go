package tasks

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultWriteTimeout bounds a single snapshot write
const DefaultWriteTimeout = 5 * time.Second

// Writer serializes snapshot writes to a Backend.
//
// One write is in flight at a time. A snapshot queued while a write is running
// replaces any snapshot still waiting, so the backend always ends up holding the
// most recently issued snapshot. Write errors are logged and dropped.
type Writer struct {
	backend Backend
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	pending map[string]string
	idle    chan struct{} // closed while nothing is queued or in flight
	closed  bool

	kick chan struct{}
	done chan struct{}
}

// NewWriter starts a writer goroutine for backend
func NewWriter(backend Backend, timeout time.Duration, logger *slog.Logger) *Writer {
	if timeout <= 0 {
		timeout = DefaultWriteTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	idle := make(chan struct{})
	close(idle)

	w := &Writer{
		backend: backend,
		timeout: timeout,
		logger:  logger,
		idle:    idle,
		kick:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// Enqueue schedules snapshot to be written and returns immediately
func (w *Writer) Enqueue(snapshot map[string]string) {
	if snapshot == nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		w.logger.Warn("snapshot dropped, writer closed", "keys", len(snapshot))
		return
	}

	if w.pending == nil {
		select {
		case <-w.idle:
			w.idle = make(chan struct{})
		default:
		}
	}
	w.pending = snapshot

	select {
	case w.kick <- struct{}{}:
	default:
	}
}

// Flush blocks until every queued snapshot has been written or ctx is done
func (w *Writer) Flush(ctx context.Context) error {
	w.mu.Lock()
	idle := w.idle
	w.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes any queued snapshot and stops the writer goroutine
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.kick)
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Writer) run() {
	defer close(w.done)

	for range w.kick {
		for {
			w.mu.Lock()
			snapshot := w.pending
			w.pending = nil
			if snapshot == nil {
				select {
				case <-w.idle:
				default:
					close(w.idle)
				}
				w.mu.Unlock()
				break
			}
			w.mu.Unlock()

			w.write(snapshot)
		}
	}
}

func (w *Writer) write(snapshot map[string]string) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	start := time.Now()
	if err := w.backend.Put(ctx, snapshot); err != nil {
		w.logger.Error("persisting tasks",
			slog.String("backend", w.backend.Name()),
			slog.Any("err", err),
		)
		return
	}
	w.logger.Debug("tasks persisted",
		slog.String("backend", w.backend.Name()),
		slog.Int("keys", len(snapshot)),
		slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000.0),
	)
}
