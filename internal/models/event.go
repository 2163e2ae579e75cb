package models

import "time"

// Event represents a loggable action in the system's activity feed.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`  // e.g., "task.created", "user.registered"
	Level     string    `json:"level"` // e.g., "info", "warn", "error"
	Message   string    `json:"message"`
	TaskID    *int64    `json:"taskId,omitempty"` // Nullable for user-level events
	CreatedAt time.Time `json:"createdAt"`
}
