package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/tarefas-app/tarefas-be/internal/auth"
	"github.com/tarefas-app/tarefas-be/internal/models"
	"github.com/tarefas-app/tarefas-be/internal/services"
)

// TaskHandler handles HTTP requests for task management.
type TaskHandler struct {
	service services.TaskServiceProvider
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(service services.TaskServiceProvider) *TaskHandler {
	return &TaskHandler{service: service}
}

// CreateTaskPayload defines the structure for task creation requests.
// Responsavel is the assignee's user ID.
type CreateTaskPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Responsavel int64  `json:"responsavel"`
	Status      string `json:"status"`
}

// Create handles the creation of a new task owned by the caller.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	var payload CreateTaskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	task, err := h.service.CreateTask(payload.Title, payload.Description, caller, payload.Responsavel, payload.Status)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", caller.ID).Msg("Failed to create task")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// GetAll lists the caller's tasks (created or assigned), optionally filtered
// by the exact status value in ?status=.
func (h *TaskHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	tasks, err := h.service.GetTasksByUser(caller, r.URL.Query().Get("status"))
	if err != nil {
		log.Error().Err(err).Int64("user_id", caller.ID).Msg("Failed to list tasks")
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	writeJSON(w, http.StatusOK, tasks)
}

// Get retrieves a single task the caller created or is assigned to.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	task, err := h.service.GetTaskByID(id, caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// Update applies a partial update to a task the caller created.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var patch models.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	task, err := h.service.UpdateTask(id, patch, caller)
	if err != nil {
		log.Warn().Err(err).Int64("task_id", id).Int64("user_id", caller.ID).Msg("Failed to update task")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// Delete removes a task the caller created.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteTask(id, caller); err != nil {
		log.Warn().Err(err).Int64("task_id", id).Int64("user_id", caller.ID).Msg("Failed to delete task")
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
