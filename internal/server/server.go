// Package server exposes the dashboard over HTTP: the page, its JSON API,
// SVG renders of the charts, and the health, readiness and metrics routes.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/aq-dashboard/internal/config"
	"github.com/sells-group/aq-dashboard/internal/dashboard"
	"github.com/sells-group/aq-dashboard/internal/observability"
)

const maxEventBytes = 64 << 10

// Options configures a Server.
type Options struct {
	Addr            string
	CORSOrigins     []string
	EventsPerSecond float64
	EventsBurst     int
	Metrics         *observability.Metrics
	// Gatherer backs /metrics. Nil means the default registry.
	Gatherer prometheus.Gatherer
}

// OptionsFromConfig maps the server section of the config onto Options.
func OptionsFromConfig(cfg config.ServerConfig) Options {
	return Options{
		Addr:            fmt.Sprintf(":%d", cfg.Port),
		CORSOrigins:     cfg.CORSOrigins,
		EventsPerSecond: cfg.EventsPerSecond,
		EventsBurst:     cfg.EventsBurst,
	}
}

// Server is the dashboard HTTP server. Chart routes answer 503 until a
// dashboard is attached with SetDashboard.
type Server struct {
	httpServer *http.Server
	dash       atomic.Pointer[dashboard.Dashboard]
	limiter    *rate.Limiter
	metrics    *observability.Metrics
}

// New builds the router and wraps it in an http.Server.
func New(opts Options) *Server {
	if opts.Metrics == nil {
		opts.Metrics = observability.NewMetricsForTesting()
	}
	if opts.EventsPerSecond <= 0 {
		opts.EventsPerSecond = 20
	}
	if opts.EventsBurst < 1 {
		opts.EventsBurst = 40
	}

	s := &Server{
		limiter: rate.NewLimiter(rate.Limit(opts.EventsPerSecond), opts.EventsBurst),
		metrics: opts.Metrics,
	}
	s.httpServer = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.routes(opts),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	} else {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(s.requireDashboard)
		r.Get("/", s.handlePage)
		r.Route("/api", func(r chi.Router) {
			r.Get("/pollutants", s.handlePollutants)
			r.Get("/ranges", s.handleRanges)
			r.Get("/overview", s.handleOverview)
			r.Get("/overview.svg", s.handleOverviewSVG)
			r.Post("/events", s.handleEvent)
			r.Get("/figures/{id}.svg", s.handleFigureSVG)
		})
	})
	return r
}

// SetDashboard attaches the dashboard the chart routes serve and marks the
// server ready.
func (s *Server) SetDashboard(d *dashboard.Dashboard) {
	s.dash.Store(d)
}

// Ready reports whether a dashboard is attached.
func (s *Server) Ready() bool {
	return s.dash.Load() != nil
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	zap.L().Info("http server starting", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) requireDashboard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.Ready() {
			writeError(w, http.StatusServiceUnavailable, "dataset not loaded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request with the global zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			zap.L().Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
