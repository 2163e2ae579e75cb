package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tarefas-app/tarefas-be/internal/apperr"
)

// writeJSON serializes v to the response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps a classified service error onto an HTTP status and a
// client-safe message. Unclassified errors become opaque 500s.
func writeError(w http.ResponseWriter, err error) {
	var status int
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindInvalidRequest:
		status = http.StatusBadRequest
	case apperr.KindConflict:
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
	}
	http.Error(w, apperr.Message(err), status)
}
