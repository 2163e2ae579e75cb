package models

import "time"

// Status values form a closed set. Filtering and validation use exact string
// equality, so the literals must round-trip unchanged through the API.
const (
	StatusNotStarted = "Não Iniciada"
	StatusInProgress = "Em Andamento"
	StatusCompleted  = "Concluída"
)

// ValidStatus reports whether s is one of the three task status literals.
func ValidStatus(s string) bool {
	return s == StatusNotStarted || s == StatusInProgress || s == StatusCompleted
}

// Task is the core mutable entity. The creator (usuario) holds edit and delete
// rights; the assignee (responsavel) holds read rights only.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatorID   int64     `json:"-"`
	AssigneeID  int64     `json:"-"`
	Creator     *User     `json:"usuario,omitempty"`
	Assignee    *User     `json:"responsavel,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TaskPatch is an explicit partial update: only non-nil fields are applied to
// the stored task. Responsavel carries the ID of the new assignee.
type TaskPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Responsavel *int64  `json:"responsavel"`
}
