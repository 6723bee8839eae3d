package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type errorEnvelope struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
	Errors  any    `json:"errors"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorEnvelope{Message: msg}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
