package tasks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Task is a single to-do item. The JSON shape is what gets persisted.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Mode selects how completed tasks are kept
type Mode string

const (
	// ModeSplit moves completed tasks into a second list
	ModeSplit Mode = "split"
	// ModeInPlace keeps one list and flags tasks as completed
	ModeInPlace Mode = "inplace"
)

// ParseMode converts a config value into a Mode
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeSplit:
		return ModeSplit, nil
	case ModeInPlace:
		return ModeInPlace, nil
	default:
		return "", fmt.Errorf("unknown list mode %q (want %q or %q)", s, ModeSplit, ModeInPlace)
	}
}

// ErrEmptyText is returned when a task description is blank
var ErrEmptyText = errors.New("task description cannot be empty")

// ValidationError reports user input that was rejected without changing state
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// validateText rejects empty and whitespace-only descriptions
func validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Field: "text", Err: ErrEmptyText}
	}
	return nil
}

// newID returns a random v4 UUID string
func newID() string {
	return uuid.NewString()
}
