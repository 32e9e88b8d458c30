package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/boddenberg/revomotors-web/internal/config"
	"github.com/boddenberg/revomotors-web/internal/handler"
	"github.com/boddenberg/revomotors-web/internal/infra/api"
	"github.com/boddenberg/revomotors-web/internal/infra/observability"
	"github.com/boddenberg/revomotors-web/internal/infra/resilience"
	"github.com/boddenberg/revomotors-web/internal/service"
	"github.com/boddenberg/revomotors-web/internal/session"
	"github.com/boddenberg/revomotors-web/internal/web"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("api_base_url", cfg.APIBaseURL),
		zap.String("session_store", cfg.SessionStore),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
	)

	ctx := context.Background()

	// --- Tracing ---
	shutdown, err := observability.InitTracer(ctx, cfg.OTLPEndpoint, "revomotors-web")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker(api.ServiceName, func(name string, from, to gobreaker.State) {
		logger.Warn("circuit breaker state change",
			zap.String("name", name),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
		metrics.SetCircuitState(int(to))
	})

	// --- API client ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	client := api.New(httpClient, cfg.APIBaseURL, cb, resilienceCfg, metrics, logger)

	// --- Sessions ---
	var store session.Store
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		rdb, err := session.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatal("failed to connect session store", zap.Error(err))
		}
		defer rdb.Close()
		store = session.NewRedisStore(rdb, cfg.SessionSecret)
		logger.Info("sessions stored in Redis", zap.String("addr", cfg.RedisAddr))
	case config.SessionStoreCookie:
		store = session.NewCookieStore(cfg.SessionSecret)
		logger.Info("sessions stored in signed cookies")
	default:
		store = session.NewMemoryStore(cfg.SessionSecret, cfg.SessionTTL)
		logger.Warn("sessions stored in memory, they do not survive restarts")
	}
	sessions := session.NewManager(store, cfg.SessionTTL, cfg.CookieSecure, metrics, logger)

	// --- Services ---
	services := handler.Services{
		Auth:    service.NewAuthService(client, logger),
		Dealer:  service.NewDealerService(client, client, logger),
		Filters: service.NewFilterService(client, client, logger),
		Leads:   service.NewLeadService(client, logger),
		Listing: service.NewListingService(client, logger),
	}

	// --- Templates ---
	views, err := web.NewRenderer()
	if err != nil {
		logger.Fatal("failed to parse templates", zap.Error(err))
	}

	// --- Router ---
	router := handler.NewRouter(services, sessions, views, client, handler.Options{
		MaxUploadBytes:   cfg.MaxUploadBytes,
		LoginPerMinute:   cfg.LoginRatePerMin,
		ListingPerMinute: cfg.ListingRatePerMin,
	}, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.HTTPTimeout + 15*time.Second,
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
