package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/picshare/picshare-go/internal/middleware"
	"github.com/picshare/picshare-go/internal/service"
)

const maxBodyBytes = 1 << 20 // 1MB

// Envelope is the shape of every response body.
type Envelope struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
	Errors  any    `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respond(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, Envelope{Data: data, Message: message})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Message: message})
}

// respondError maps service errors to status codes. Anything unrecognized is
// logged and rendered without detail.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, Envelope{Message: verr.Error(), Errors: verr.Fields})
	case errors.Is(err, service.ErrInvalidCredentials):
		respondMessage(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrUnauthenticated):
		respondMessage(w, http.StatusUnauthorized, "Unauthenticated.")
	case errors.Is(err, service.ErrNotFound):
		respondMessage(w, http.StatusNotFound, "Not Found")
	default:
		slog.Error("request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.RequestIDFromContext(r.Context()),
		)
		respondMessage(w, http.StatusInternalServerError, "Server Error")
	}
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst zero so
// that field validation reports what is missing. It writes the error response
// itself and returns false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil {
		return true
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return true
		case errors.As(err, &tooLarge):
			respondMessage(w, http.StatusRequestEntityTooLarge, "Request body too large")
		default:
			respondMessage(w, http.StatusBadRequest, "Invalid request body")
		}
		return false
	}
	return true
}
