package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger reports whether a backing store is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type healthStatus struct {
	Status string `json:"status"`
}

// HealthHandler handles GET /health requests.
func HealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				slog.Warn("health check failed", "error", err)
				respond(w, http.StatusServiceUnavailable, healthStatus{Status: "unavailable"}, "Database unreachable")
				return
			}
		}
		respond(w, http.StatusOK, healthStatus{Status: "ok"}, "OK")
	}
}
