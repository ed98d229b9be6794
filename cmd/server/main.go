package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"

	"github.com/JonMunkholm/credport/internal/catalog"
	"github.com/JonMunkholm/credport/internal/config"
	"github.com/JonMunkholm/credport/internal/core"
	_ "github.com/JonMunkholm/credport/internal/core/formats" // Register all formats
	"github.com/JonMunkholm/credport/internal/history"
	"github.com/JonMunkholm/credport/internal/logging"
	"github.com/JonMunkholm/credport/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"history_enabled", cfg.Database.Enabled(),
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"schema_generation", cfg.Import.Generation,
	)

	types, err := catalog.Load(afero.NewOsFs(), cfg.Import.CatalogPath)
	if err != nil {
		slog.Error("failed to load resource type catalog", "path", cfg.Import.CatalogPath, "error", err)
		os.Exit(1)
	}
	slog.Info("resource types loaded", "count", len(types), "formats", core.FormatCount())

	ctx := context.Background()

	var store core.HistoryStore
	if cfg.Database.Enabled() {
		pool, err := connect(ctx, &cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		store = history.NewStore(pool)
	} else {
		slog.Info("import history disabled, DATABASE_URL not set")
	}

	core.ResultRetention = cfg.Import.ResultRetention

	limiter := core.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime)
	service := core.NewService(core.ServiceConfig{
		Catalog:        types,
		Generation:     cfg.Import.SchemaGeneration(),
		FlattenFolders: cfg.Import.FlattenFolders,
		MaxPayloadSize: cfg.Import.MaxPayloadSize,
		Limiter:        limiter,
		History:        store,
		Logger:         logger,
	})

	server := web.NewServer(service, cfg)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	if store != nil {
		go service.StartHistoryPruner(jobCtx, core.PruneConfig{
			Retention:     cfg.Database.HistoryRetention,
			BatchSize:     cfg.Database.HistoryPruneBatch,
			CheckInterval: cfg.Database.HistoryPruneInterval,
		})
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop background jobs
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for active imports to complete (with timeout)
		if status := limiter.Status(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// connect applies migrations when enabled and opens the history pool.
func connect(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	if cfg.Migrate {
		if err := history.RunMigrations(cfg.URL); err != nil {
			return nil, err
		}
		slog.Info("history migrations applied")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}

	// Apply pool configuration from config
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}
