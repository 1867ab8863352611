package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"

	"github.com/remiblancher/cmsinfo/internal/api/metrics"
	"github.com/remiblancher/cmsinfo/internal/api/router"
)

// Server represents the HTTP server.
type Server struct {
	cfg     *Config
	version string
	log     logr.Logger
	out     io.Writer
	handler http.Handler
}

// New creates a new Server.
func New(cfg *Config, version string, log logr.Logger) *Server {
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	s := &Server{
		cfg:     cfg,
		version: version,
		log:     log,
		out:     os.Stdout,
	}
	s.handler = router.New(&router.Config{
		Version:      version,
		Language:     cfg.Language,
		MaxBodyBytes: cfg.MaxBodyBytes,
		Logger:       log.WithName("http"),
		Metrics:      metrics.New(),
	})
	return s
}

// SetOutput redirects the startup banner.
func (s *Server) SetOutput(w io.Writer) {
	s.out = w
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the HTTP server and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Address(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully within ShutdownTimeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	s.printStartupInfo(ln.Addr().String())

	errChan := make(chan error, 1)
	go func() {
		if s.cfg.TLSEnabled() {
			errChan <- srv.ServeTLS(ln, s.cfg.TLSCert, s.cfg.TLSKey)
		} else {
			errChan <- srv.Serve(ln)
		}
	}()

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.log.Info("shutting down", "reason", context.Cause(ctx).Error())
		return s.shutdown(srv)
	}
}

// shutdown gracefully stops srv.
func (s *Server) shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	s.log.Info("server stopped gracefully")
	return nil
}

// printStartupInfo prints server startup information.
func (s *Server) printStartupInfo(addr string) {
	scheme := "http"
	if s.cfg.TLSEnabled() {
		scheme = "https"
	}
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "cmsinfo API Server")
	fmt.Fprintln(s.out, "==================")
	fmt.Fprintf(s.out, "  Version:  %s\n", s.version)
	fmt.Fprintf(s.out, "  Address:  %s://%s\n", scheme, addr)
	if s.cfg.TLSEnabled() {
		fmt.Fprintln(s.out, "  TLS:      enabled")
	}
	fmt.Fprintln(s.out)
	s.printEndpoints()
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "Use Ctrl+C to stop")
	fmt.Fprintln(s.out)
}

// printEndpoints prints available endpoints.
func (s *Server) printEndpoints() {
	fmt.Fprintln(s.out, "Endpoints:")
	fmt.Fprintln(s.out, "  GET  /health              - Health check")
	fmt.Fprintln(s.out, "  GET  /ready               - Readiness check")
	fmt.Fprintln(s.out, "  GET  /metrics             - Prometheus metrics")
	fmt.Fprintln(s.out, "  GET  /api/openapi.yaml    - OpenAPI specification")
	fmt.Fprintln(s.out, "  POST /api/v1/cms/info     - Interpret a CMS object")
}
