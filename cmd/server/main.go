package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/p-n-ai/pai-notes/internal/api"
	"github.com/p-n-ai/pai-notes/internal/mathrender"
	"github.com/p-n-ai/pai-notes/internal/notes"
	"github.com/p-n-ai/pai-notes/internal/platform/cache"
	"github.com/p-n-ai/pai-notes/internal/platform/config"
	"github.com/p-n-ai/pai-notes/internal/platform/database"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.Log))

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	var checks []check

	var db *database.DB
	if cfg.Database.URL != "" {
		db, err = database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			slog.Error("failed to prepare notes schema", "error", err)
			os.Exit(1)
		}
		checks = append(checks, check{name: "database", probe: db})
	}

	catalog, err := loadCatalog(ctx, cfg.Notes, db)
	if err != nil {
		slog.Error("failed to load notes", "source", cfg.Notes.Source, "error", err)
		os.Exit(1)
	}

	resolver := notes.NewResolver(catalog, notes.ResolverConfig{
		DefaultGrade:   cfg.Notes.DefaultGrade,
		AdvancedGrades: cfg.Notes.AdvancedGrades,
	})
	renderer := mathrender.NewRenderer(mathrender.RendererConfig{MaxExprLen: cfg.Notes.MaxExprLen})

	var opts []api.Option
	if cfg.Cache.URL != "" {
		ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
		c, err := cache.New(ctx, cfg.Cache.URL, cache.Options{TTL: ttl})
		if err != nil {
			slog.Error("failed to connect to cache", "error", err)
			os.Exit(1)
		}
		defer c.Close()
		opts = append(opts, api.WithCache(c, cache.Key))
		checks = append(checks, check{name: "cache", probe: c})
	}

	mux := newMux(api.New(resolver, renderer, opts...), checks...)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "notes", catalog.Len(), "version", catalog.Version())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func loadCatalog(ctx context.Context, cfg config.NotesConfig, db *database.DB) (*notes.Catalog, error) {
	switch cfg.Source {
	case config.SourceDir:
		return notes.LoadDir(cfg.Path)
	case config.SourcePostgres:
		if db == nil {
			return nil, fmt.Errorf("notes source %q needs a database", cfg.Source)
		}
		return notes.LoadPostgres(ctx, db.Pool)
	default:
		return notes.LoadEmbedded()
	}
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

type check struct {
	name  string
	probe healthChecker
}

// newMux creates the HTTP router with health check endpoints and the notes API.
func newMux(h *api.Handler, checks ...check) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", handleReadyz(checks))
	h.Register(mux)
	return mux
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func handleReadyz(checks []check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		for _, c := range checks {
			if err := c.probe.HealthCheck(ctx); err != nil {
				slog.Warn("readiness check failed", "component", c.name, "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck
					"status":    "unavailable",
					"component": c.name,
				})
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}
}
