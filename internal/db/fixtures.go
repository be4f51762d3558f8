package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/pdxmph/todo-tui/internal/tasks"
)

// CreateFixturesDatabase creates a database pre-filled with sample tasks
func CreateFixturesDatabase(dbPath, driver string) error {
	// Initialize empty database
	if err := Initialize(dbPath, driver); err != nil {
		return fmt.Errorf("initializing fixtures database: %w", err)
	}

	database, err := Open(dbPath, driver)
	if err != nil {
		return fmt.Errorf("opening fixtures database: %w", err)
	}
	defer database.Close()

	active := []tasks.Task{
		{ID: uuid.NewString(), Text: "Buy milk"},
		{ID: uuid.NewString(), Text: "Call the dentist about Thursday"},
		{ID: uuid.NewString(), Text: "Renew library books"},
		{ID: uuid.NewString(), Text: "Draft quarterly budget"},
	}
	done := []tasks.Task{
		{ID: uuid.NewString(), Text: "Water the plants", Completed: true},
		{ID: uuid.NewString(), Text: "Book train tickets", Completed: true},
	}

	entries := make(map[string]string, 2)
	for key, list := range map[string][]tasks.Task{
		tasks.KeyTasks:          active,
		tasks.KeyCompletedTasks: done,
	} {
		b, err := json.Marshal(list)
		if err != nil {
			return fmt.Errorf("encoding %s fixtures: %w", key, err)
		}
		entries[key] = string(b)
	}

	if err := database.Put(context.Background(), entries); err != nil {
		return fmt.Errorf("adding fixture tasks: %w", err)
	}

	return nil
}
