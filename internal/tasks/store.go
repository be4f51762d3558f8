package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// maxIDAttempts caps how often Add redraws an id that is already taken
const maxIDAttempts = 8

// Store owns the task lists. Every mutation is applied in memory first and then
// handed to a Writer as a whole snapshot; the caller never waits on storage.
//
// Store is driven from a single goroutine (the UI event loop) and is not safe
// for concurrent mutation.
type Store struct {
	mode      Mode
	tasks     []Task
	completed []Task

	editing   bool
	editingID string

	// set when a split-mode completed list was merged into the single list
	clearCompletedKey bool

	backend      Backend
	writer       *Writer
	writeTimeout time.Duration
	logger       *slog.Logger
	newID        func() string
}

// Option configures a Store
type Option func(*Store)

// WithMode selects split or in-place completion
func WithMode(mode Mode) Option {
	return func(s *Store) { s.mode = mode }
}

// WithLogger sets the logger used for persistence failures
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithIDFunc overrides the task id generator
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithWriteTimeout bounds each snapshot write
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Store) { s.writeTimeout = d }
}

// NewStore creates an empty store mirrored to backend. Call Load to read
// previously persisted tasks.
func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		mode:    ModeSplit,
		backend: backend,
		logger:  slog.Default(),
		newID:   newID,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.writer = NewWriter(backend, s.writeTimeout, s.logger)
	return s
}

// Mode returns the completion mode of the store
func (s *Store) Mode() Mode {
	return s.mode
}

// Tasks returns a copy of the primary list (active tasks in split mode)
func (s *Store) Tasks() []Task {
	return append([]Task(nil), s.tasks...)
}

// CompletedTasks returns a copy of the completed list; always empty in in-place mode
func (s *Store) CompletedTasks() []Task {
	return append([]Task(nil), s.completed...)
}

// Len returns the number of tasks across all lists
func (s *Store) Len() int {
	return len(s.tasks) + len(s.completed)
}

// Editing reports the id of the task being edited, if any
func (s *Store) Editing() (string, bool) {
	return s.editingID, s.editing
}

// Load replaces the in-memory lists with the persisted snapshot.
// Missing keys, unreadable storage and malformed JSON all leave the affected
// list empty; failures are logged and never returned.
func (s *Store) Load(ctx context.Context) {
	s.tasks = nil
	s.completed = nil
	s.clearCompletedKey = false

	tasks, err := s.read(ctx, KeyTasks)
	if err != nil {
		s.logger.Error("loading tasks", slog.String("key", KeyTasks), slog.Any("err", err))
	}
	completed, err := s.read(ctx, KeyCompletedTasks)
	if err != nil {
		s.logger.Error("loading tasks", slog.String("key", KeyCompletedTasks), slog.Any("err", err))
	}

	seen := make(map[string]bool, len(tasks)+len(completed))
	keep := func(t Task) bool {
		if t.ID == "" || seen[t.ID] {
			s.logger.Warn("dropping task with missing or duplicate id", slog.String("id", t.ID))
			return false
		}
		seen[t.ID] = true
		return true
	}

	switch s.mode {
	case ModeInPlace:
		for _, t := range tasks {
			if keep(t) {
				s.tasks = append(s.tasks, t)
			}
		}
		for _, t := range completed {
			if keep(t) {
				t.Completed = true
				s.tasks = append(s.tasks, t)
				s.clearCompletedKey = true
			}
		}
	default:
		for _, t := range tasks {
			if !keep(t) {
				continue
			}
			if t.Completed {
				s.completed = append(s.completed, t)
			} else {
				s.tasks = append(s.tasks, t)
			}
		}
		for _, t := range completed {
			if keep(t) {
				t.Completed = true
				s.completed = append(s.completed, t)
			}
		}
	}

	s.logger.Info("tasks loaded",
		slog.String("backend", s.backend.Name()),
		slog.String("mode", string(s.mode)),
		slog.Int("tasks", len(s.tasks)),
		slog.Int("completed", len(s.completed)),
	)
}

func (s *Store) read(ctx context.Context, key string) ([]Task, error) {
	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var tasks []Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}
	return tasks, nil
}

// Add appends a new active task. Blank text is rejected with a ValidationError
// wrapping ErrEmptyText and nothing is persisted.
func (s *Store) Add(text string) (Task, error) {
	if err := validateText(text); err != nil {
		return Task{}, err
	}

	id, err := s.freshID()
	if err != nil {
		return Task{}, err
	}

	t := Task{ID: id, Text: text}
	s.tasks = append(s.tasks, t)
	s.persist()
	return t, nil
}

func (s *Store) freshID() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.newID()
		if id != "" && !s.contains(id) {
			return id, nil
		}
	}
	return "", fmt.Errorf("generating task id: %d attempts collided", maxIDAttempts)
}

func (s *Store) contains(id string) bool {
	return indexOf(s.tasks, id) >= 0 || indexOf(s.completed, id) >= 0
}

// Edit enters editing mode for task and returns the text to pre-fill the input with
func (s *Store) Edit(task Task) string {
	s.editing = true
	s.editingID = task.ID
	return task.Text
}

// Update replaces the text of the task with the given id, leaving its completion
// flag alone. Editing mode is left whether or not a task matched.
func (s *Store) Update(id, text string) bool {
	s.editing = false
	s.editingID = ""

	if i := indexOf(s.tasks, id); i >= 0 {
		s.tasks[i].Text = text
	} else if i := indexOf(s.completed, id); i >= 0 {
		s.completed[i].Text = text
	} else {
		return false
	}

	s.persist()
	return true
}

// Submit applies input text: it updates the task being edited, or adds a new one
func (s *Store) Submit(text string) error {
	if s.editing {
		s.Update(s.editingID, text)
		return nil
	}
	_, err := s.Add(text)
	return err
}

// Delete removes the task with the given id from whichever list holds it
func (s *Store) Delete(id string) bool {
	var ok bool
	if s.tasks, ok = without(s.tasks, id); !ok {
		if s.completed, ok = without(s.completed, id); !ok {
			return false
		}
	}
	s.persist()
	return true
}

// ToggleOrComplete completes a task. In in-place mode the flag is flipped; in
// split mode an active task moves to the end of the completed list and there
// is no way back.
func (s *Store) ToggleOrComplete(id string) bool {
	i := indexOf(s.tasks, id)
	if i < 0 {
		return false
	}

	if s.mode == ModeInPlace {
		s.tasks[i].Completed = !s.tasks[i].Completed
	} else {
		done := s.tasks[i]
		done.Completed = true
		s.tasks, _ = without(s.tasks, id)
		s.completed = append(s.completed, done)
	}

	s.persist()
	return true
}

// DeleteCompleted removes a completed task. Active tasks are never touched.
func (s *Store) DeleteCompleted(id string) bool {
	if s.mode == ModeInPlace {
		i := indexOf(s.tasks, id)
		if i < 0 || !s.tasks[i].Completed {
			return false
		}
		s.tasks, _ = without(s.tasks, id)
	} else {
		var ok bool
		if s.completed, ok = without(s.completed, id); !ok {
			return false
		}
	}

	s.persist()
	return true
}

// Flush waits until the latest snapshot has reached the backend
func (s *Store) Flush(ctx context.Context) error {
	return s.writer.Flush(ctx)
}

// Close flushes pending writes and stops the writer. The backend stays open.
func (s *Store) Close(ctx context.Context) error {
	return s.writer.Close(ctx)
}

// snapshot encodes the full state under the fixed storage keys
func (s *Store) snapshot() (map[string]string, error) {
	entries := make(map[string]string, 2)

	tasks, err := encode(s.tasks)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", KeyTasks, err)
	}
	entries[KeyTasks] = tasks

	if s.mode == ModeSplit || s.clearCompletedKey {
		completed, err := encode(s.completed)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", KeyCompletedTasks, err)
		}
		entries[KeyCompletedTasks] = completed
	}
	return entries, nil
}

func (s *Store) persist() {
	entries, err := s.snapshot()
	if err != nil {
		s.logger.Error("persisting tasks", slog.Any("err", err))
		return
	}
	s.clearCompletedKey = false
	s.writer.Enqueue(entries)
}

// encode writes an empty list as [] rather than null
func encode(tasks []Task) (string, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	b, err := json.Marshal(tasks)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func indexOf(tasks []Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// without returns tasks minus the entry with id, in a fresh slice
func without(tasks []Task, id string) ([]Task, bool) {
	i := indexOf(tasks, id)
	if i < 0 {
		return tasks, false
	}
	out := make([]Task, 0, len(tasks)-1)
	out = append(out, tasks[:i]...)
	return append(out, tasks[i+1:]...), true
}
