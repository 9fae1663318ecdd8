package webhook

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonny/helpdesk-bot/internal/adapter/inbound/webhook/middleware"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	ShutdownTimeout   time.Duration
	RequestsPerMinute int
	TrustProxy        bool
}

// Server serves the Discord interactions endpoint with graceful shutdown.
type Server struct {
	cfg       ServerConfig
	handler   http.Handler
	publicKey ed25519.PublicKey
	logger    *slog.Logger
	srv       *http.Server
}

func NewServer(cfg ServerConfig, handler http.Handler, publicKey ed25519.PublicKey, logger *slog.Logger) *Server {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 600
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return &Server{cfg: cfg, handler: handler, publicKey: publicKey, logger: logger}
}

// SetupRoutes builds the routed handler with all middleware applied.
// Route layout:
//
//	GET  /health        - Health check
//	POST /interactions  - Signed Discord interactions
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", HealthHandler())
	mux.Handle("/interactions", middleware.DiscordSignature(s.publicKey)(s.handler))

	// Outermost first: BodyReader -> Security -> Logging -> RateLimit.
	var h http.Handler = mux
	h = middleware.RateLimit(s.cfg.RequestsPerMinute, s.cfg.TrustProxy)(h)
	h = middleware.Logging(s.logger, s.cfg.TrustProxy)(h)
	h = middleware.SecurityHeaders(h)
	h = middleware.BodyReader(h)
	return h
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.SetupRoutes(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("interactions server listening", "port", s.cfg.Port)
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
			return fmt.Errorf("interactions server shutdown error: %w", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}
