package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/tarefas-app/tarefas-be/internal/services"
)

// UserHandler handles HTTP requests for the user directory.
type UserHandler struct {
	service services.UserServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// GetAll lists every registered user.
func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.GetAllUsers()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// Get handles retrieving a user by their ID.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	user, err := h.service.GetUserByID(id)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", id).Msg("Failed to get user by ID")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Delete handles the permanent deletion of a user account. Deletion is
// refused while tasks still reference the user.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteUser(id); err != nil {
		log.Warn().Err(err).Int64("user_id", id).Msg("Failed to delete user")
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
