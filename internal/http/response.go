package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"masroofy/internal/core"
	"masroofy/internal/notify"
)

// mutationResponse is returned by the write endpoints: the affected
// transaction (creates only) plus the banner notification the mutation
// just published.
type mutationResponse struct {
	Transaction  *core.Transaction    `json:"transaction,omitempty"`
	Notification *notify.Notification `json:"notification,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func errorJSON(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	errorJSON(w, http.StatusMethodNotAllowed, "method not allowed")
}
