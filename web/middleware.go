// ABOUTME: Request logging, metrics and rate limiting middleware
// ABOUTME: Routes are labelled by their mux path template
package web

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/harperreed/outreach/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	limiterhttp "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		route := routeTemplate(r)
		metrics.RecordHTTPRequest(r.Method, route, strconv.Itoa(rec.status), duration)
		s.logger.Info("request",
			"method", r.Method,
			"route", route,
			"status", rec.status,
			"duration", duration,
		)
	})
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}

// newRateLimiter builds the limiter for generation routes. A nil client
// keeps counters in memory.
func newRateLimiter(formatted string, client redis.UniversalClient) (func(http.Handler) http.Handler, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", formatted, err)
	}

	store := memory.NewStore()
	if client != nil {
		store, err = limiterredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: "outreach:limiter"})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis limiter store: %w", err)
		}
	}

	mw := limiterhttp.NewMiddleware(limiter.New(store, rate),
		limiterhttp.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			writeFailure(w, http.StatusTooManyRequests, "Too many requests")
		}))
	return mw.Handler, nil
}
