package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/picshare/picshare-go/internal/middleware"
)

// RouterConfig holds everything the router wires together.
type RouterConfig struct {
	Auth          AuthService
	Posts         PostService
	Authenticator middleware.Authenticator
	DB            Pinger
	Logger        *slog.Logger

	// Metrics and MetricsHandler are optional.
	Metrics        middleware.RequestRecorder
	MetricsHandler http.Handler

	RateLimitRPS   float64
	RateLimitBurst int
	// Done stops background work such as the rate limiter janitor.
	Done <-chan struct{}
}

// NewRouter builds the HTTP routes of the API.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	authHandler := NewAuthHandler(cfg.Auth)
	postHandler := NewPostHandler(cfg.Posts)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	// Innermost, so the access log and metrics see the recovered 500.
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondMessage(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondMessage(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/health", HealthHandler(cfg.DB))
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.Done))
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.TokenAuth(cfg.Authenticator))
		r.Post("/logout", authHandler.HandleLogout)
		r.Get("/me", authHandler.HandleMe)
	})

	r.Get("/posts", postHandler.HandleList)
	r.Get("/users/{id}/posts", postHandler.HandleListByUser)

	return r
}
