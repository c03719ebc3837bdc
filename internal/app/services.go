package app

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cryptoboard/gateway/internal/middleware"
	"github.com/cryptoboard/gateway/internal/system"
	"github.com/cryptoboard/gateway/pkg/logger"
)

// httpService runs the gateway's HTTP listener as a managed service. Listener
// failures after startup surface on Err.
type httpService struct {
	srv   *http.Server
	log   *logger.Logger
	errCh chan error
}

var _ system.Service = (*httpService)(nil)

func newHTTPService(srv *http.Server, log *logger.Logger) *httpService {
	return &httpService{srv: srv, log: log, errCh: make(chan error, 1)}
}

func (s *httpService) Name() string { return "http" }

func (s *httpService) Start(context.Context) error {
	go func() {
		s.log.Infof("gateway listening on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.errCh <- err
		}
	}()
	return nil
}

func (s *httpService) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Err reports a listener failure after a successful start.
func (s *httpService) Err() <-chan error { return s.errCh }

// limiterCleanupService owns the rate limiter's background reaper.
type limiterCleanupService struct {
	limiter  *middleware.RateLimiter
	interval time.Duration
	stop     func()
}

var _ system.Service = (*limiterCleanupService)(nil)

func (s *limiterCleanupService) Name() string { return "ratelimit-cleanup" }

func (s *limiterCleanupService) Start(context.Context) error {
	s.stop = s.limiter.StartCleanup(s.interval)
	return nil
}

func (s *limiterCleanupService) Stop(context.Context) error {
	if s.stop != nil {
		s.stop()
	}
	return nil
}

// databaseService holds the pooled connection open for the process lifetime
// and closes it on shutdown.
type databaseService struct {
	db *sqlx.DB
}

var _ system.Service = (*databaseService)(nil)

func (s *databaseService) Name() string { return "database" }

func (s *databaseService) Start(context.Context) error { return nil }

func (s *databaseService) Stop(context.Context) error { return s.db.Close() }
