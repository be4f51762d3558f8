package db

import "time"

// Entry is a single stored key-value pair
type Entry struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
