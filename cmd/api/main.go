package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"clipforge/internal/compiler"
	"clipforge/internal/config"
	"clipforge/internal/httpapi"
	"clipforge/internal/jobstore"
	"clipforge/internal/pkg/logger"
	"clipforge/internal/pkg/shutdown"
	"clipforge/internal/render"
	"clipforge/internal/storage"
	"clipforge/internal/template"
)

func main() {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	// Initialize logger
	log := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Format:      getEnv("LOG_FORMAT", "json"),
		ServiceName: "clipforge-api",
		AddSource:   getEnv("LOG_SOURCE", "false") == "true",
	})

	log.Info("starting clipforge API",
		"version", "0.1.0",
	)

	// Load configuration
	cfg, err := config.Load(getEnv("CLIPFORGE_CONFIG", "config.yaml"))
	if err != nil {
		log.LogFatal("failed to load configuration", err)
	}

	ctx := context.Background()

	// Initialize shutdown manager
	shutdownMgr := shutdown.NewManager(log, 30*time.Second)

	// Job store
	if err := os.MkdirAll(cfg.Jobs.Dir, 0o755); err != nil {
		log.LogFatal("failed to create jobs directory", err)
	}
	jobs := jobstore.New(cfg.Jobs.Dir)

	// Template store
	var templates template.Store
	switch cfg.Templates.Store {
	case "postgres":
		log.Info("connecting to PostgreSQL")
		pool, err := pgxpool.New(ctx, cfg.Templates.DatabaseURL)
		if err != nil {
			log.LogFatal("failed to connect to PostgreSQL", err)
		}
		if err := pool.Ping(ctx); err != nil {
			log.LogFatal("failed to ping PostgreSQL", err)
		}
		shutdownMgr.Register("postgres", func(ctx context.Context) error {
			pool.Close()
			return nil
		})
		log.Info("PostgreSQL connected")
		templates = template.NewPGStore(pool)

	case "file", "":
		if err := os.MkdirAll(cfg.Templates.Dir, 0o755); err != nil {
			log.LogFatal("failed to create templates directory", err)
		}
		templates = template.NewFileStore(cfg.Templates.Dir)

	default:
		log.Error("unknown template store", "store", cfg.Templates.Store)
		os.Exit(1)
	}

	// Optional publishing backend
	sp, err := storage.NewProvider(cfg.Storage)
	if err != nil {
		log.LogFatal("failed to initialize storage provider", err)
	}
	if sp != nil {
		log.Info("storage provider initialized", "provider", sp.Provider())
	}

	// Render supervisor
	supervisor := render.New(render.Deps{
		Store:     jobs,
		Compiler:  compiler.New(cfg.Encoder),
		Publisher: sp,
		Log:       log,
	})
	shutdownMgr.Register("render-supervisor", func(ctx context.Context) error {
		// In-flight encodes are never cancelled; wait for them to drain.
		supervisor.Wait()
		return nil
	})

	// Create HTTP router
	router := httpapi.NewRouter(httpapi.Deps{
		Jobs:       jobs,
		Supervisor: supervisor,
		Templates:  templates,
		SP:         sp,
		Log:        log,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Register server shutdown
	shutdownMgr.Register("http-server", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return server.Shutdown(ctx)
	})

	// Start server in goroutine
	go func() {
		log.Info("HTTP server listening",
			"addr", server.Addr,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogFatal("HTTP server failed", err)
		}
	}()

	// Wait for shutdown signal
	shutdownMgr.Wait()
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	return v
}
