// Package opsapi serves the operator endpoints: liveness, readiness, build
// info and the audit trail.
package opsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonny/helpdesk-bot/internal/adapter/inbound/webhook/middleware"
	"github.com/jonny/helpdesk-bot/internal/domain/port/outbound"
	"github.com/jonny/helpdesk-bot/pkg/health"
	"github.com/jonny/helpdesk-bot/pkg/version"
)

type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
	TrustProxy      bool
}

type Server struct {
	cfg     ServerConfig
	checker *health.Checker
	audit   outbound.AuditRepository
	logger  *slog.Logger
	srv     *http.Server
}

func NewServer(cfg ServerConfig, checker *health.Checker, audit outbound.AuditRepository, logger *slog.Logger) *Server {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return &Server{cfg: cfg, checker: checker, audit: audit, logger: logger}
}

// Routes:
//
//	GET /healthz  - Liveness
//	GET /readyz   - Readiness checks
//	GET /version  - Build info
//	GET /audit                 - Audit records (only with a repository)
//	GET /audit/sessions/{key}  - One session's records
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.checker.LivenessHandler())
	mux.HandleFunc("GET /readyz", s.checker.ReadinessHandler())
	mux.HandleFunc("GET /version", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(version.Get())
	})
	if s.audit != nil {
		mux.HandleFunc("GET /audit", AuditHandler(s.audit, s.logger))
		mux.HandleFunc("GET /audit/sessions/{key}", SessionTrailHandler(s.audit, s.logger))
	}

	var h http.Handler = mux
	h = middleware.Logging(s.logger, s.cfg.TrustProxy)(h)
	h = middleware.SecurityHeaders(h)
	return h
}

func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.SetupRoutes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("ops server listening", "port", s.cfg.Port)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("ops server shutdown error: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}
