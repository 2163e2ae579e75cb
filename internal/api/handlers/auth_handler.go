package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tarefas-app/tarefas-be/internal/auth"
	"github.com/tarefas-app/tarefas-be/internal/models"
	"github.com/tarefas-app/tarefas-be/internal/services"
)

// AuthHandler handles registration, login and token introspection.
type AuthHandler struct {
	users services.UserServiceProvider
	tasks services.TaskServiceProvider
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, tasks services.TaskServiceProvider) *AuthHandler {
	return &AuthHandler{users: users, tasks: tasks}
}

// CredentialsPayload defines the structure for register and login requests.
type CredentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles new user registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload CredentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.users.Register(payload.Username, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("username", payload.Username).Msg("Failed to register user")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login handles user authentication and JWT generation. The response carries
// the token plus the user's created and assigned task lists.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload CredentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.users.Authenticate(payload.Username, payload.Password)
	if err != nil {
		log.Warn().Str("username", payload.Username).Msg("Failed authentication attempt")
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := auth.GenerateJWT(user)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to generate JWT")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	// Set Secure flag based on environment.
	isProd := os.Getenv("APP_ENV") == "production"

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		Secure:   isProd,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	created := []models.Task{}
	assigned := []models.Task{}
	if all, err := h.tasks.GetTasksByUser(user, ""); err != nil {
		log.Warn().Err(err).Int64("user_id", user.ID).Msg("Failed to load task lists for login response")
	} else {
		for _, t := range all {
			if t.CreatorID == user.ID {
				created = append(created, t)
			}
			if t.AssigneeID == user.ID {
				assigned = append(assigned, t)
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":         token,
		"user":          user,
		"createdTasks":  created,
		"assignedTasks": assigned,
	})
}

// GetMe retrieves the currently authenticated user from the token.
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user claims from context")
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	user, err := h.users.GetUserByID(caller.ID)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", caller.ID).Msg("User from token not found in DB")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
