// Package server exposes rendered landing pages over HTTP.
//
// Routes:
//   - GET /             the released version of the request's marketplace
//   - GET /_lp_preview  any published version, selected by ?preview_version=N
//   - GET /healthz      liveness probe
//
// Pages are rendered as HTML unless the client asks for JSON with
// ?format=json or an Accept header naming application/json.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mesh-intelligence/landing/internal/landing"
	"github.com/mesh-intelligence/landing/internal/marketplace"
)

// Renderer produces the page of a community version. A nil version means
// the released one.
type Renderer interface {
	Render(ctx context.Context, communityID int64, version *int64) (*landing.Page, error)
}

// Config holds the presentation and timing settings of a Server.
type Config struct {
	// FontPath is the URL prefix the page loads its fonts from.
	FontPath string

	// PrimaryColor themes the HTML rendering.
	PrimaryColor string

	// RenderTimeout bounds each render. Zero means no limit.
	RenderTimeout time.Duration
}

// shutdownTimeout bounds graceful shutdown in ListenAndServe.
const shutdownTimeout = 10 * time.Second

// Server routes landing page requests to a Renderer.
type Server struct {
	renderer Renderer
	resolver *marketplace.Resolver
	config   Config
	logger   *log.Logger
	router   chi.Router
}

// New builds a Server. A nil logger means log.Default().
func New(renderer Renderer, resolver *marketplace.Resolver, cfg Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.FontPath == "" {
		cfg.FontPath = landing.DefaultFontPath
	}
	if cfg.PrimaryColor == "" {
		cfg.PrimaryColor = landing.DefaultPrimaryColor
	}
	s := &Server{
		renderer: renderer,
		resolver: resolver,
		config:   cfg,
		logger:   logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(marketplace.Middleware(s.resolver))
		r.Get("/", s.handleIndex)
		r.Get("/_lp_preview", s.handlePreview)
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// requestLogger logs one line per request after it completes.
func requestLogger(l *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			l.Info("request",
				"method", r.Method,
				"host", r.Host,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).Round(time.Microsecond),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
