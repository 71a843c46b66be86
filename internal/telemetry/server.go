package telemetry

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rileyhilliard/hostdeck/internal/logger"
)

// Server exposes /metrics on its own listener.
type Server struct {
	srv *http.Server
	ln  net.Listener
	log logger.Logger
}

// Listen binds addr and prepares a metrics server. Call Serve to start it.
func Listen(addr string, m *Metrics, log logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.Default()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return &Server{
		srv: &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		ln:  ln,
		log: log,
	}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Serve blocks until ctx is cancelled, then shuts the server down.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.Serve(s.ln)
	}()
	s.log.Debug("metrics listening on %s", s.Addr())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
