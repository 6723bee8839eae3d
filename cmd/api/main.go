package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/picshare/picshare-go/internal/cache"
	"github.com/picshare/picshare-go/internal/config"
	"github.com/picshare/picshare-go/internal/handler"
	"github.com/picshare/picshare-go/internal/logger"
	"github.com/picshare/picshare-go/internal/metrics"
	"github.com/picshare/picshare-go/internal/repository"
	"github.com/picshare/picshare-go/internal/seed"
	"github.com/picshare/picshare-go/internal/service"
)

const usage = `usage: api [command]

commands:
  serve     start the HTTP server (default)
  migrate   apply pending database migrations and exit
  seed      apply migrations, insert development data and exit`

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.Setup(os.Stdout, cfg.LogLevel)

	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "serve":
		err = serve(cfg)
	case "migrate":
		err = migrate(cfg)
	case "seed":
		err = seedDatabase(cfg)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		slog.Error("command failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func migrate(cfg config.Config) error {
	if err := repository.RunMigrations(cfg.DatabaseDSN); err != nil {
		return err
	}
	slog.Info("migrations applied")
	return nil
}

func seedDatabase(cfg config.Config) error {
	if err := migrate(cfg); err != nil {
		return err
	}

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	seeder := seed.New(repository.NewUserRepository(db), repository.NewPostRepository(db), uint64(time.Now().UnixNano()))
	if _, err := seeder.Run(context.Background()); err != nil {
		if errors.Is(err, seed.ErrAlreadySeeded) {
			slog.Info("seed skipped, test account already exists")
			return nil
		}
		return err
	}
	return nil
}

func serve(cfg config.Config) error {
	if cfg.MigrateOnStart {
		if err := migrate(cfg); err != nil {
			return err
		}
	}

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, "picshare"),
	)
	collector := metrics.NewCollector(reg)

	// Left nil unless Redis is configured; a typed nil would look like a cache.
	var tokenCache service.TokenCache
	if cfg.RedisAddr != "" {
		client, err := cache.NewRedisClient(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			slog.Warn("redis unavailable, token cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			defer client.Close()
			tokenCache = cache.NewTokenCache(client, cfg.TokenCacheTTL)
			slog.Info("token cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.TokenCacheTTL)
		}
	}

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	postRepo := repository.NewPostRepository(db)

	tokenService := service.NewTokenService(tokenRepo, userRepo, tokenCache, collector)
	authService := service.NewAuthService(userRepo, tokenService, collector)
	postService := service.NewPostService(postRepo, userRepo, cfg.PostsPerPage)

	done := make(chan struct{})
	defer close(done)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: handler.NewRouter(handler.RouterConfig{
			Auth:           authService,
			Posts:          postService,
			Authenticator:  tokenService,
			DB:             db,
			Logger:         slog.Default(),
			Metrics:        collector,
			MetricsHandler: metrics.Handler(reg),
			RateLimitRPS:   cfg.RateLimitRPS,
			RateLimitBurst: cfg.RateLimitBurst,
			Done:           done,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
