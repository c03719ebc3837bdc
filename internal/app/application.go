// Package app wires gateway dependencies and manages the HTTP server
// lifecycle.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/cryptoboard/gateway/internal/auth"
	"github.com/cryptoboard/gateway/internal/config"
	feedsvc "github.com/cryptoboard/gateway/internal/feed"
	"github.com/cryptoboard/gateway/internal/httpapi"
	"github.com/cryptoboard/gateway/internal/metrics"
	"github.com/cryptoboard/gateway/internal/middleware"
	"github.com/cryptoboard/gateway/internal/platform/migrations"
	"github.com/cryptoboard/gateway/internal/storage"
	"github.com/cryptoboard/gateway/internal/storage/memory"
	"github.com/cryptoboard/gateway/internal/storage/postgres"
	"github.com/cryptoboard/gateway/internal/system"
	"github.com/cryptoboard/gateway/internal/upstream"
	"github.com/cryptoboard/gateway/pkg/logger"
)

// Application owns the wired gateway and its managed services.
type Application struct {
	cfg     *config.Config
	log     *logger.Logger
	manager *system.Manager
	http    *httpService
}

// New constructs an application instance with default wiring.
func New() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		FilePrefix: cfg.Logging.FilePrefix,
	})

	store, db, err := buildStore(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("configure store: %w", err)
	}

	credentials := auth.New(cfg.Auth.Secret, cfg.Auth.TokenTTL, log)

	feed, err := feedsvc.New([]upstream.Adapter{
		upstream.NewPriceAdapter(nil, cfg.Upstream.CoinGeckoURL, cfg.Upstream.FetchTimeout, log),
		upstream.NewNewsAdapter(nil, cfg.Upstream.CryptoPanicURL, cfg.Upstream.CryptoPanicKey, cfg.Upstream.FetchTimeout, log),
		upstream.NewInsightAdapter(store, log),
		upstream.NewMemeAdapter(log),
	}, cfg.Upstream.RefreshTimeout, log)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("configure feed: %w", err)
	}

	handler := httpapi.New(credentials, store, feed, log)
	router := handler.Router(middleware.NewAuthMiddleware(credentials, log))
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	router.Use(metrics.Middleware())

	rateLimiter := middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, log)

	var chained http.Handler = router
	chained = rateLimiter.Handler(chained)
	chained = middleware.NewCORSMiddleware(cfg.Server.AllowedOrigins).Handler(chained)
	chained = middleware.LoggingMiddleware(log)(chained)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      chained,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	httpSvc := newHTTPService(srv, log)

	manager := system.NewManager(log)
	if db != nil {
		manager.Register(&databaseService{db: db})
	}
	manager.Register(&limiterCleanupService{limiter: rateLimiter, interval: time.Minute})
	manager.Register(httpSvc)

	return &Application{
		cfg:     cfg,
		log:     log,
		manager: manager,
		http:    httpSvc,
	}, nil
}

// Run starts the managed services and blocks until the context is cancelled
// or the listener fails.
func (a *Application) Run(ctx context.Context) error {
	if err := a.manager.StartAll(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-a.http.Err():
		return err
	}
}

// Shutdown stops every started service in reverse order, draining in-flight
// requests before the database closes.
func (a *Application) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	return a.manager.StopAll(shutdownCtx)
}

// buildStore opens the relational store when a DSN is configured, and falls
// back to the in-memory store otherwise so the gateway can run without a
// database in local development.
func buildStore(cfg *config.Config, log *logger.Logger) (storage.Store, *sqlx.DB, error) {
	if cfg.Database.DSN == "" {
		log.Warn("DATABASE_DSN not set; using in-memory store, data will not survive restarts")
		return memory.New(), nil, nil
	}

	db, err := openDatabase(cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrations.Apply(ctx, db.DB); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("apply migrations: %w", err)
	}

	return postgres.New(db), db, nil
}

func openDatabase(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
