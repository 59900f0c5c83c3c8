package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fredydc1/neonflow-api/internal/config"
	"github.com/fredydc1/neonflow-api/internal/domain"
	"github.com/fredydc1/neonflow-api/internal/handler"
	"github.com/fredydc1/neonflow-api/internal/infra/cache"
	"github.com/fredydc1/neonflow-api/internal/infra/gemini"
	"github.com/fredydc1/neonflow-api/internal/infra/observability"
	"github.com/fredydc1/neonflow-api/internal/infra/postgres"
	"github.com/fredydc1/neonflow-api/internal/infra/resilience"
	"github.com/fredydc1/neonflow-api/internal/infra/sqlite"
	"github.com/fredydc1/neonflow-api/internal/port"
	"github.com/fredydc1/neonflow-api/internal/service"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = godotenv.Load()

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("postgres_configured", cfg.DatabaseURL != ""),
		zap.String("local_db_path", cfg.LocalDBPath),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
	)

	ctx := context.Background()

	// --- Tracing ---
	shutdown, err := observability.InitTracer(ctx, cfg.OTLPEndpoint, "neonflow-api")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Caches ---
	txCache := cache.New[[]domain.Transaction](cfg.CacheTTL)
	empCache := cache.New[[]domain.Employee](cfg.CacheTTL)
	supCache := cache.New[[]domain.Supplier](cfg.CacheTTL)
	feCache := cache.New[[]domain.FixedExpenseItem](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
	}
	cb := resilience.NewCircuitBreaker("finance-store")

	// --- Store ---
	var store port.FinanceStore
	switch {
	case cfg.DatabaseURL != "":
		pg, err := postgres.New(ctx, cfg.DatabaseURL, cb, resilienceCfg, logger)
		if err != nil {
			logger.Warn("postgres unavailable, starting disconnected", zap.Error(err))
		} else {
			logger.Info("using Postgres as data backend")
			store = pg
			defer pg.Close()
		}
	case cfg.LocalDBPath != "":
		lite, err := sqlite.New(cfg.LocalDBPath, logger)
		if err != nil {
			logger.Warn("sqlite unavailable, starting disconnected", zap.Error(err))
		} else {
			logger.Info("using local SQLite as data backend", zap.String("path", cfg.LocalDBPath))
			store = lite
			defer lite.Close()
		}
	default:
		logger.Warn("no store configured, writes will be rejected")
	}

	// --- Advisor ---
	var advisor port.Advisor
	if cfg.GeminiAPIKey != "" {
		gm, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
		if err != nil {
			logger.Warn("gemini client unavailable, advisor will answer with fallback", zap.Error(err))
		} else {
			logger.Info("gemini advisor enabled", zap.String("model", cfg.GeminiModel))
			advisor = gm
		}
	} else {
		logger.Warn("GEMINI_API_KEY not set, advisor will answer with fallback")
	}

	// --- Services ---
	financeSvc := service.NewFinanceService(store, txCache, empCache, supCache, feCache, metrics, logger)
	sessionSvc := service.NewSessionService(financeSvc, logger)
	reportSvc := service.NewReportService(financeSvc, logger)
	advisorSvc := service.NewAdvisorService(financeSvc, advisor, metrics, logger)
	authSvc := service.NewAuthService(cfg.AdminPasswordHash, cfg.JWTSecret, cfg.JWTAccessTTL, logger)
	if !authSvc.Enabled() {
		logger.Warn("ADMIN_PASSWORD_HASH not set, write routes are open")
	}

	// --- Router ---
	router := handler.NewRouter(financeSvc, sessionSvc, reportSvc, advisorSvc, authSvc, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
