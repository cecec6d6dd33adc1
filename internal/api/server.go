// Package api serves the catalog over HTTP.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sells-group/pricelist-cli/internal/catalog"
	"github.com/sells-group/pricelist-cli/internal/model"
)

// Options configures the router.
type Options struct {
	// Discounts apply when a request does not override them.
	Discounts   model.DiscountConfig
	CORSOrigins []string
	// Registerer and Gatherer back the metrics endpoint. Both nil disables metrics.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

type server struct {
	svc       *catalog.Service
	discounts model.DiscountConfig
	metrics   *Metrics
}

// NewRouter builds the HTTP handler for svc.
func NewRouter(svc *catalog.Service, opts Options) http.Handler {
	s := &server{
		svc:       svc,
		discounts: opts.Discounts,
		metrics:   NewMetrics(opts.Registerer),
	}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}),
		s.instrument,
	)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(noCache)
		r.Get("/lists", s.getLists)
		r.Post("/lists", s.createList)
		r.Get("/lists/{id}", s.getList)
		r.Delete("/lists/{id}", s.deleteList)
		r.Get("/prices/{code}", s.getQuote)
		r.Get("/wholesale", s.getWholesale)
		r.Get("/compare", s.getComparison)
	})

	return r
}

// instrument records metrics and logs each request.
func (s *server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := ""
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			route = rctx.RoutePattern()
		}
		elapsed := time.Since(start)
		s.metrics.ObserveRequest(r.Method, route, strconv.Itoa(status), elapsed)
		zap.L().Debug("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// noCache marks responses as uncacheable; list data changes on every import.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}
