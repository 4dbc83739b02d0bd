package http

import (
	"context"
	"errors"
	"net"
	stdhttp "net/http"
	"time"

	"newsletter/internal/platform/config"
	"newsletter/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// Server is a thin wrapper over chi + stdlib http.Server
type Server struct {
	addr     string
	mux      *chi.Mux
	srv      *stdhttp.Server
	grace    time.Duration
	listener net.Listener
}

// ServerOption customizes the server before it starts
type ServerOption func(*Server)

// WithHandlerWrap wraps the root handler (tracing, metrics) outside chi
func WithHandlerWrap(wrap func(stdhttp.Handler) stdhttp.Handler) ServerOption {
	return func(s *Server) { s.srv.Handler = wrap(s.srv.Handler) }
}

// WithListener serves on an existing listener, tests use it for ephemeral ports
func WithListener(l net.Listener) ServerOption {
	return func(s *Server) {
		s.listener = l
		s.addr = l.Addr().String()
	}
}

// NewServer builds a server bound to CORE_API_ style config (API_PORT, SHUTDOWN_GRACE)
func NewServer(cfg config.Conf, opts ...ServerOption) *Server {
	addr := cfg.MayString("API_PORT", ":8000")
	if addr[0] != ':' && !hasHost(addr) {
		addr = ":" + addr
	}
	m := chi.NewRouter()
	s := &Server{
		addr:  addr,
		mux:   m,
		grace: cfg.MayDuration("SHUTDOWN_GRACE", 10*time.Second),
		srv: &stdhttp.Server{
			Addr:              addr,
			Handler:           m,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func hasHost(addr string) bool {
	_, _, err := net.SplitHostPort(addr)
	return err == nil
}

// Router returns a Router facade over the internal chi mux
func (s *Server) Router() Router { return AdaptChi(s.mux) }

// Addr returns the listening address
func (s *Server) Addr() string { return s.addr }

// Run serves until ctx is done, then drains in flight requests within the grace period
func (s *Server) Run(ctx context.Context) error {
	log := logger.Named("http")

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.addr).Msg("http listening")
		var err error
		if s.listener != nil {
			err = s.srv.Serve(s.listener)
		} else {
			err = s.srv.ListenAndServe()
		}
		if errors.Is(err, stdhttp.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Dur("grace", s.grace).Msg("http shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), s.grace)
	defer cancel()
	if err := s.srv.Shutdown(sctx); err != nil {
		return err
	}
	return <-errCh
}
