package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultReadHeaderTimeout = 30 * time.Second
	DefaultShutdownTimeout   = 5 * time.Second
)

// Options configures a Server.
type Options struct {
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	Logger            *zap.Logger
}

// Server is a single HTTP listener.
type Server struct {
	name            string
	addr            string
	shutdownTimeout time.Duration
	logger          *zap.Logger

	http  *http.Server
	ready chan struct{}
	bound net.Addr
}

// New returns a Server named name that will listen on addr.
func New(name, addr string, handler http.Handler, opts Options) *Server {
	if opts.ReadHeaderTimeout <= 0 {
		opts.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}

	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}

	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	logger := opts.Logger.With(zap.String("server", name))

	return &Server{
		name:            name,
		addr:            addr,
		shutdownTimeout: opts.ShutdownTimeout,
		logger:          logger,
		http: &http.Server{
			Handler:           h2c.NewHandler(handler, &http2.Server{}),
			ReadHeaderTimeout: opts.ReadHeaderTimeout,
			ErrorLog:          zap.NewStdLog(logger),
		},
		ready: make(chan struct{}),
	}
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address. It is nil until Ready is closed.
func (s *Server) Addr() net.Addr {
	return s.bound
}

// Serve listens and serves until ctx is cancelled, then shuts down
// gracefully within the shutdown timeout.
func (s *Server) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("server %s: listen %s: %w", s.name, s.addr, err)
	}

	s.bound = listener.Addr()
	s.http.BaseContext = func(net.Listener) context.Context { return context.WithoutCancel(ctx) }
	close(s.ready)

	s.logger.Info("listening", zap.String("addr", s.bound.String()))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.http.Shutdown(shutdownCtx); err != nil {
			_ = s.http.Close()
			return fmt.Errorf("server %s: shutdown: %w", s.name, err)
		}

		s.logger.Info("stopped")

		return nil
	})

	g.Go(func() error {
		if err := s.http.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server %s: %w", s.name, err)
		}

		return nil
	})

	return g.Wait()
}

// Run serves every server until ctx is cancelled or one of them fails.
func Run(ctx context.Context, servers ...*Server) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, s := range servers {
		if s == nil {
			continue
		}

		g.Go(func() error {
			return s.Serve(gctx)
		})
	}

	return g.Wait()
}
