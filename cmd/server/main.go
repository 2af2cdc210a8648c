// Package main is the entrypoint for the ABAPLens API server.
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

	"github.com/abaplens/abaplens/internal/analysis"
	"github.com/abaplens/abaplens/internal/api"
	"github.com/abaplens/abaplens/internal/api/handler"
	mw "github.com/abaplens/abaplens/internal/api/middleware"
	"github.com/abaplens/abaplens/internal/api/response"
	"github.com/abaplens/abaplens/internal/cache"
	"github.com/abaplens/abaplens/internal/config"
	"github.com/abaplens/abaplens/internal/store"
	"github.com/abaplens/abaplens/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	shutdownTimeout   = 30 * time.Second
	writeTimeoutSlack = 30 * time.Second
)

func main() {
	slog.SetDefault(newLogger(slog.LevelInfo))

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config, fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	proxies, err := mw.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(newLogger(cfg.Server.LogLevel))
	slog.Info("config loaded", "ai_provider", cfg.AI.Provider, "model", cfg.AI.Model(), "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Tracing
	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			slog.Warn("tracer shutdown failed", "error", err)
		}
	}()

	// 3. Optional Redis cache
	var redisCache *cache.RedisCache
	if cfg.Redis.URL != "" {
		redisCache, err = cache.NewRedisCache(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("create redis cache: %w", err)
		}
		defer redisCache.Close()

		if err := redisCache.Ping(ctx); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		slog.Info("redis connected", "cache_ttl", cfg.Redis.CacheTTL.String())
	}

	// 4. Optional history database
	var pgStore *store.PostgresStore
	if cfg.Database.URL != "" {
		pool, err := store.Connect(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()
		slog.Info("database connected")

		if err := store.RunMigrations(cfg.Database.URL); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		slog.Info("database migrations applied")

		pgStore = store.NewPostgresStore(pool)
	}

	// 5. Analysis service
	opts := analysis.ServiceOptions{CacheTTL: cfg.Redis.CacheTTL}
	var (
		history           handler.HistoryReader
		dbPing, cachePing Pinger
	)
	if redisCache != nil {
		opts.Cache = redisCache
		cachePing = redisCache
	}
	if pgStore != nil {
		opts.Recorder = pgStore
		history = pgStore
		dbPing = pgStore
	}
	svc, err := analysis.NewServiceFromConfig(cfg.AI, opts)
	if err != nil {
		return fmt.Errorf("create analysis service: %w", err)
	}
	slog.Info("AI provider initialized", "provider", cfg.AI.Provider)

	// 6. Build router with dependencies
	var limiter api.Limiter
	if redisCache != nil {
		limiter = mw.NewRateLimit(redisCache, cfg.Server.RateLimitPerMinute, proxies)
	} else {
		local := mw.NewLocalRateLimit(cfg.Server.RateLimitPerMinute, proxies)
		go local.Run(ctx)
		limiter = local
	}

	deps := api.Dependencies{
		Auth:      mw.NewAuth(cfg.Server.APIKeyHashes),
		RateLimit: limiter,

		HealthHandler:  healthHandler(dbPing, cachePing),
		MetricsHandler: promhttp.Handler(),
		AnalyzeHandler: handler.NewAnalyzeHandler(svc, cfg.Server.MaxBodyBytes),
		ListAnalyses:   handler.NewListAnalysesHandler(history),
		GetAnalysis:    handler.NewGetAnalysisHandler(history),
	}

	router := api.NewRouter(deps)

	// 7. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      writeTimeout(cfg.AI.InferenceTimeout),
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// writeTimeout leaves room past the inference timeout for sanitizing and
// writing the response. Zero disables both.
func writeTimeout(inference time.Duration) time.Duration {
	if inference <= 0 {
		return 0
	}
	return inference + writeTimeoutSlack
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}

// Pinger is a dependency that can report its health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// healthHandler checks the enabled dependencies. A nil Pinger is reported
// as disabled and never degrades the result.
func healthHandler(db, c Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": check(r.Context(), db),
			"cache":    check(r.Context(), c),
		}

		if checks["database"] == "degraded" || checks["cache"] == "degraded" {
			response.JSON(w, http.StatusServiceUnavailable, map[string]any{
				"error":    "One or more services degraded",
				"services": checks,
			})
			return
		}

		response.JSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}

func check(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		slog.Warn("health check failed", "error", err)
		return "degraded"
	}
	return "ok"
}
