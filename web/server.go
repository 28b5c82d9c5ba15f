// ABOUTME: JSON HTTP server exposing the outreach engine under /api/outreach
// ABOUTME: Wires routing, CORS, auth, rate limiting, metrics and graceful shutdown
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/harperreed/outreach/outreach"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
)

const shutdownTimeout = 10 * time.Second

type Options struct {
	AuthSecret  string
	CronSecret  string
	CORSOrigins []string
	AIRateLimit string
	// InsecureNoAuth lets private routes through when AuthSecret is empty.
	// Without it an empty secret rejects every private request.
	InsecureNoAuth bool
	// Redis backs the rate limiter when set.
	Redis redis.UniversalClient
}

type Server struct {
	svc     *outreach.Service
	opts    Options
	logger  *slog.Logger
	handler http.Handler
}

func NewServer(svc *outreach.Service, opts Options, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.AIRateLimit == "" {
		opts.AIRateLimit = "20-M"
	}
	s := &Server{svc: svc, opts: opts, logger: logger}

	limit, err := newRateLimiter(opts.AIRateLimit, opts.Redis)
	if err != nil {
		return nil, err
	}

	router := mux.NewRouter()
	router.Use(s.logRequests)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := router.PathPrefix("/api/outreach").Subrouter()

	cron := api.PathPrefix("/cron").Subrouter()
	cron.Use(s.requireCronSecret)
	cron.HandleFunc("/followups", s.handleCronFollowUps).Methods(http.MethodGet, http.MethodPost)

	private := api.NewRoute().Subrouter()
	private.Use(s.requireAuth)
	s.registerRecordRoutes(private)
	s.registerEmailRoutes(private)

	ai := private.PathPrefix("/ai").Subrouter()
	ai.Use(limit)
	s.registerAIRoutes(ai)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	s.handler = corsHandler.Handler(router)
	return s, nil
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Store().Ping(r.Context()); err != nil {
		writeFailure(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeMessage(w, "ok")
}
