package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tarefas-app/tarefas-be/internal/models"
)

// TaskRepository is the persistence boundary for tasks. FindByID returns
// (nil, nil) when no row matches so callers can decide how absence is
// classified; Delete reports how many rows were removed.
type TaskRepository interface {
	Create(task *models.Task) error
	FindByID(id int64, withUsers bool) (*models.Task, error)
	Save(task *models.Task) error
	Delete(id int64) (int64, error)
	FindByOwnerOrAssignee(userID int64, status string) ([]models.Task, error)
	CountReferencingUser(userID int64) (int64, error)
}

// SQLTaskRepository implements TaskRepository over database/sql.
type SQLTaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new SQLTaskRepository.
func NewTaskRepository(db *sql.DB) *SQLTaskRepository {
	return &SQLTaskRepository{db: db}
}

// Create inserts a new task and fills in its generated ID and timestamps.
func (r *SQLTaskRepository) Create(task *models.Task) error {
	now := time.Now().UTC()
	res, err := r.db.Exec(
		"INSERT INTO tasks(title, description, status, usuario_id, responsavel_id, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?, ?)",
		task.Title, task.Description, task.Status, task.CreatorID, task.AssigneeID, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	task.ID = id
	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

// FindByID retrieves a single task, optionally with its creator and assignee
// user records loaded.
func (r *SQLTaskRepository) FindByID(id int64, withUsers bool) (*models.Task, error) {
	var task models.Task
	row := r.db.QueryRow(
		"SELECT id, title, description, status, usuario_id, responsavel_id, created_at, updated_at FROM tasks WHERE id = ?", id)
	err := row.Scan(&task.ID, &task.Title, &task.Description, &task.Status, &task.CreatorID, &task.AssigneeID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	if withUsers {
		if err := r.loadUsers(&task); err != nil {
			return nil, err
		}
	}
	return &task, nil
}

// Save persists the mutable fields of an existing task.
func (r *SQLTaskRepository) Save(task *models.Task) error {
	task.UpdatedAt = time.Now().UTC()
	_, err := r.db.Exec(
		"UPDATE tasks SET title = ?, description = ?, status = ?, responsavel_id = ?, updated_at = ? WHERE id = ?",
		task.Title, task.Description, task.Status, task.AssigneeID, task.UpdatedAt, task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to save task %d: %w", task.ID, err)
	}
	return nil
}

// Delete removes a task and returns the number of affected rows.
func (r *SQLTaskRepository) Delete(id int64) (int64, error) {
	res, err := r.db.Exec("DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// FindByOwnerOrAssignee returns every task where the user is creator or
// assignee, optionally restricted to an exact status value. Ordering is
// whatever the store returns.
func (r *SQLTaskRepository) FindByOwnerOrAssignee(userID int64, status string) ([]models.Task, error) {
	query := "SELECT id, title, description, status, usuario_id, responsavel_id, created_at, updated_at FROM tasks WHERE (usuario_id = ? OR responsavel_id = ?)"
	args := []interface{}{userID, userID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var task models.Task
		if err := rows.Scan(&task.ID, &task.Title, &task.Description, &task.Status, &task.CreatorID, &task.AssigneeID, &task.CreatedAt, &task.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// CountReferencingUser counts tasks that reference the user as creator or assignee.
func (r *SQLTaskRepository) CountReferencingUser(userID int64) (int64, error) {
	var count int64
	row := r.db.QueryRow("SELECT COUNT(*) FROM tasks WHERE usuario_id = ? OR responsavel_id = ?", userID, userID)
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SQLTaskRepository) loadUsers(task *models.Task) error {
	var creator, assignee models.User
	row := r.db.QueryRow("SELECT id, username, created_at FROM users WHERE id = ?", task.CreatorID)
	if err := row.Scan(&creator.ID, &creator.Username, &creator.CreatedAt); err != nil {
		return fmt.Errorf("failed to load task creator: %w", err)
	}

	row = r.db.QueryRow("SELECT id, username, created_at FROM users WHERE id = ?", task.AssigneeID)
	if err := row.Scan(&assignee.ID, &assignee.Username, &assignee.CreatedAt); err != nil {
		return fmt.Errorf("failed to load task assignee: %w", err)
	}

	task.Creator = &creator
	task.Assignee = &assignee
	return nil
}
