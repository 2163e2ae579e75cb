package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tarefas-app/tarefas-be/internal/models"
)

// UserRepository is the persistence boundary for user records. FindByID and
// FindByUsername return (nil, nil) when no row matches.
type UserRepository interface {
	Create(user *models.User) error
	FindByID(id int64) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	FindAll() ([]models.User, error)
	Delete(id int64) (int64, error)
}

// SQLUserRepository implements UserRepository over database/sql.
type SQLUserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLUserRepository.
func NewUserRepository(db *sql.DB) *SQLUserRepository {
	return &SQLUserRepository{db: db}
}

// Create inserts a new user and fills in its generated ID.
func (r *SQLUserRepository) Create(user *models.User) error {
	now := time.Now().UTC()
	res, err := r.db.Exec(
		"INSERT INTO users(username, password_hash, created_at) VALUES(?, ?, ?)",
		user.Username, user.PasswordHash, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id
	user.CreatedAt = now
	return nil
}

// FindByID retrieves a single user by ID, without the password hash.
func (r *SQLUserRepository) FindByID(id int64) (*models.User, error) {
	var user models.User
	row := r.db.QueryRow("SELECT id, username, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Username, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByUsername retrieves a single user by username, including the password
// hash for credential verification.
func (r *SQLUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	row := r.db.QueryRow("SELECT id, username, password_hash, created_at FROM users WHERE username = ?", username)
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindAll lists every registered user, without password hashes.
func (r *SQLUserRepository) FindAll() ([]models.User, error) {
	rows, err := r.db.Query("SELECT id, username, created_at FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Delete removes a user and returns the number of affected rows.
func (r *SQLUserRepository) Delete(id int64) (int64, error) {
	res, err := r.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
