package services

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tarefas-app/tarefas-be/internal/apperr"
	"github.com/tarefas-app/tarefas-be/internal/models"
	"github.com/tarefas-app/tarefas-be/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// UserServiceProvider defines the interface for user services. It doubles as
// the user directory the task engine resolves assignees against.
type UserServiceProvider interface {
	Register(username, password string) (models.User, error)
	Authenticate(username, password string) (models.User, error)
	GetUserByID(id int64) (models.User, error)
	GetAllUsers() ([]models.User, error)
	DeleteUser(id int64) error
}

// UserService provides business logic for user management.
type UserService struct {
	users  repository.UserRepository
	tasks  repository.TaskRepository
	events EventServiceProvider
}

// NewUserService creates a new UserService.
func NewUserService(users repository.UserRepository, tasks repository.TaskRepository, events EventServiceProvider) *UserService {
	return &UserService{users: users, tasks: tasks, events: events}
}

// Register creates a new user, hashing their password. A taken username is a
// conflict.
func (s *UserService) Register(username, password string) (models.User, error) {
	if username == "" || password == "" {
		return models.User{}, apperr.New(apperr.KindInvalidRequest, "username and password are required")
	}

	existing, err := s.users.FindByUsername(username)
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.KindInternal, "failed to register user", err)
	}
	if existing != nil {
		return models.User{}, apperr.New(apperr.KindConflict, "username already taken")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}

	user := models.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
	}
	if err := s.users.Create(&user); err != nil {
		return models.User{}, apperr.Wrap(apperr.KindInternal, "failed to register user", err)
	}

	s.events.CreateEvent("user.registered", "info", fmt.Sprintf("User '%s' registered.", user.Username), nil)

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// Authenticate verifies a user's credentials. Unknown username and wrong
// password are deliberately indistinguishable to the caller.
func (s *UserService) Authenticate(username, password string) (models.User, error) {
	user, err := s.users.FindByUsername(username)
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.KindInternal, "failed to authenticate user", err)
	}
	if user == nil {
		return models.User{}, apperr.New(apperr.KindInvalidRequest, "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, apperr.New(apperr.KindInvalidRequest, "invalid credentials")
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return *user, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id int64) (models.User, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.KindInternal, "failed to load user", err)
	}
	if user == nil {
		return models.User{}, apperr.New(apperr.KindNotFound, "user not found")
	}
	return *user, nil
}

// GetAllUsers lists every registered user.
func (s *UserService) GetAllUsers() ([]models.User, error) {
	users, err := s.users.FindAll()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list users", err)
	}
	return users, nil
}

// DeleteUser removes a user account. Deletion is refused while any task still
// references the user as creator or assignee, so the task invariants hold.
func (s *UserService) DeleteUser(id int64) error {
	referencing, err := s.tasks.CountReferencingUser(id)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to delete user", err)
	}
	if referencing > 0 {
		return apperr.New(apperr.KindConflict, "user still referenced by tasks")
	}

	affected, err := s.users.Delete(id)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to delete user", err)
	}
	if affected == 0 {
		return apperr.New(apperr.KindNotFound, "user not found")
	}

	log.Info().Int64("user_id", id).Msg("User deleted")
	return nil
}
