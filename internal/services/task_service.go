package services

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tarefas-app/tarefas-be/internal/apperr"
	"github.com/tarefas-app/tarefas-be/internal/models"
	"github.com/tarefas-app/tarefas-be/internal/repository"
)

// TaskServiceProvider defines the interface for task services.
type TaskServiceProvider interface {
	CreateTask(title, description string, creator models.User, assigneeID int64, status string) (models.Task, error)
	UpdateTask(id int64, patch models.TaskPatch, caller models.User) (models.Task, error)
	DeleteTask(id int64, caller models.User) error
	GetTasksByUser(caller models.User, status string) ([]models.Task, error)
	GetTaskByID(id int64, caller models.User) (models.Task, error)
}

// TaskService enforces the task ownership rules: the creator holds edit and
// delete rights, the creator and the assignee hold read rights. It is
// stateless between calls; every operation re-reads the stores.
type TaskService struct {
	tasks  repository.TaskRepository
	users  repository.UserRepository
	events EventServiceProvider
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository, events EventServiceProvider) *TaskService {
	return &TaskService{tasks: tasks, users: users, events: events}
}

// CreateTask creates a task owned by the caller. The assignee must resolve to
// an existing user; an omitted status defaults to "Não Iniciada".
func (s *TaskService) CreateTask(title, description string, creator models.User, assigneeID int64, status string) (models.Task, error) {
	if title == "" {
		return models.Task{}, apperr.New(apperr.KindInvalidRequest, "title is required")
	}

	if status == "" {
		status = models.StatusNotStarted
	} else if !models.ValidStatus(status) {
		return models.Task{}, apperr.New(apperr.KindInvalidRequest, "invalid status")
	}

	assignee, err := s.users.FindByID(assigneeID)
	if err != nil {
		return models.Task{}, apperr.Wrap(apperr.KindInternal, "failed to create task", err)
	}
	if assignee == nil {
		return models.Task{}, apperr.New(apperr.KindNotFound, "assignee not found")
	}

	// Resolve the creator through the directory too, so the returned
	// sub-object matches what later reads serialize.
	creatorRec, err := s.users.FindByID(creator.ID)
	if err != nil {
		return models.Task{}, apperr.Wrap(apperr.KindInternal, "failed to create task", err)
	}
	if creatorRec == nil {
		return models.Task{}, apperr.New(apperr.KindInvalidRequest, "creator not found")
	}

	task := models.Task{
		Title:       title,
		Description: description,
		Status:      status,
		CreatorID:   creator.ID,
		AssigneeID:  assignee.ID,
	}
	if err := s.tasks.Create(&task); err != nil {
		return models.Task{}, apperr.Wrap(apperr.KindInternal, "failed to create task", err)
	}

	task.Creator = creatorRec
	task.Assignee = assignee

	s.events.CreateEvent("task.created", "info", fmt.Sprintf("Task '%s' created by '%s'.", task.Title, creatorRec.Username), &task.ID)
	return task, nil
}

// UpdateTask applies a partial update to a task. Only the creator may edit.
// Fields absent from the patch keep their stored values. Unexpected
// persistence failures are logged here and surfaced as a generic "update
// failed" so the underlying cause never reaches the client.
func (s *TaskService) UpdateTask(id int64, patch models.TaskPatch, caller models.User) (models.Task, error) {
	task, err := s.tasks.FindByID(id, true)
	if err != nil {
		log.Error().Err(err).Int64("task_id", id).Msg("Failed to load task for update")
		return models.Task{}, apperr.Wrap(apperr.KindInvalidRequest, "update failed", err)
	}
	if task == nil {
		return models.Task{}, apperr.New(apperr.KindInvalidRequest, "task not found")
	}
	if task.CreatorID != caller.ID {
		return models.Task{}, apperr.New(apperr.KindInvalidRequest, "not permitted to edit")
	}

	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Status != nil {
		if !models.ValidStatus(*patch.Status) {
			return models.Task{}, apperr.New(apperr.KindInvalidRequest, "invalid status")
		}
		task.Status = *patch.Status
	}
	if patch.Responsavel != nil {
		assignee, err := s.users.FindByID(*patch.Responsavel)
		if err != nil {
			log.Error().Err(err).Int64("task_id", id).Msg("Failed to resolve new assignee")
			return models.Task{}, apperr.Wrap(apperr.KindInvalidRequest, "update failed", err)
		}
		if assignee == nil {
			return models.Task{}, apperr.New(apperr.KindNotFound, "assignee not found")
		}
		task.AssigneeID = assignee.ID
		task.Assignee = assignee
	}

	if err := s.tasks.Save(task); err != nil {
		log.Error().Err(err).Int64("task_id", id).Msg("Failed to persist task update")
		return models.Task{}, apperr.Wrap(apperr.KindInvalidRequest, "update failed", err)
	}

	s.events.CreateEvent("task.updated", "info", fmt.Sprintf("Task '%s' updated by '%s'.", task.Title, caller.Username), &task.ID)
	return *task, nil
}

// DeleteTask removes a task. Only the creator may delete; being the assignee
// grants no delete rights. Deleting an id that does not exist is an error,
// not a no-op.
func (s *TaskService) DeleteTask(id int64, caller models.User) error {
	task, err := s.tasks.FindByID(id, false)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to delete task", err)
	}
	if task == nil {
		return apperr.New(apperr.KindInvalidRequest, "task not found")
	}
	if task.CreatorID != caller.ID {
		return apperr.New(apperr.KindInvalidRequest, "not permitted to delete")
	}

	affected, err := s.tasks.Delete(id)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to delete task", err)
	}
	if affected == 0 {
		// Lost a race with a concurrent delete.
		return apperr.New(apperr.KindInvalidRequest, "task not found")
	}

	s.events.CreateEvent("task.deleted", "info", fmt.Sprintf("Task '%s' deleted by '%s'.", task.Title, caller.Username), &id)
	return nil
}

// GetTasksByUser returns every task where the caller is creator or assignee,
// optionally restricted to an exact status value. The status filter is a
// closed label set, never free text, so no normalization is applied.
func (s *TaskService) GetTasksByUser(caller models.User, status string) ([]models.Task, error) {
	tasks, err := s.tasks.FindByOwnerOrAssignee(caller.ID, status)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list tasks", err)
	}
	return tasks, nil
}

// GetTaskByID retrieves a single task. Only the creator and the assignee may
// view it; an unauthorized caller gets the same error as a missing task so
// task existence never leaks.
func (s *TaskService) GetTaskByID(id int64, caller models.User) (models.Task, error) {
	if id <= 0 {
		return models.Task{}, apperr.New(apperr.KindInvalidRequest, "invalid id")
	}

	task, err := s.tasks.FindByID(id, true)
	if err != nil {
		return models.Task{}, apperr.Wrap(apperr.KindInternal, "failed to load task", err)
	}
	if task == nil || (task.CreatorID != caller.ID && task.AssigneeID != caller.ID) {
		return models.Task{}, apperr.New(apperr.KindInvalidRequest, "task not found or not permitted to view")
	}
	return *task, nil
}
