// Package server serves a local copy of the snake game site for running the smoke check during development.
package server

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"golang.org/x/sync/errgroup"
)

//go:embed site
var siteFS embed.FS

// Server serves the site on a fixed address. The zero value is not usable; use NewServer.
type Server struct {
	listenAddress string
	httpServer    *http.Server

	logger *zerolog.Logger
}

func NewServer(listenAddress string, logger *zerolog.Logger) (*Server, error) {
	handler, err := NewHandler(logger)
	if err != nil {
		return nil, err
	}

	server := &Server{
		listenAddress: listenAddress,
		httpServer: &http.Server{
			Addr:    listenAddress,
			Handler: handler,
		},
		logger: logger,
	}

	return server, nil
}

// NewHandler returns an http.Handler that serves the site.
func NewHandler(logger *zerolog.Logger) (http.Handler, error) {
	site, err := fs.Sub(siteFS, "site")
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()

	router.Use(middleware.Compress(5))
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)

	router.Use(hlog.NewHandler(*logger))
	router.Use(hlog.RequestIDHandler("request_id", "x-request-id"))
	router.Use(hlog.MethodHandler("method"))
	router.Use(hlog.URLHandler("url"))
	router.Use(hlog.RemoteAddrHandler("remote_ip"))
	router.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("HTTP request")
	}))

	router.Use(middleware.Recoverer)

	router.Handle("/*", http.FileServer(http.FS(site)))

	return router, nil
}

// Run listens on the server's address and serves until ctx is canceled, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.listenAddress)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is canceled or serving fails. listener is closed when Serve returns.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// Serving can also end through a direct call to Shutdown.
		defer cancel()
		s.logger.Info().Str("listen_address", listener.Addr().String()).Msg("Starting HTTP server")
		err := s.httpServer.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		return s.Shutdown(context.Background())
	})

	return g.Wait()
}

// Shutdown gracefully stops the server. It is safe to call before or without Serve, in which case a later Serve
// returns immediately.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Stopping HTTP server")
	s.httpServer.SetKeepAlivesEnabled(false)
	return s.httpServer.Shutdown(ctx)
}
