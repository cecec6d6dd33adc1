package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records HTTP traffic and list imports.
type Metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	imports       *prometheus.CounterVec
	importedItems prometheus.Counter
}

// NewMetrics registers the API metrics on reg. A nil reg yields a Metrics
// whose methods do nothing.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricelist_http_requests_total",
		Help: "HTTP requests served, by route and status code.",
	}, []string{"method", "route", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pricelist_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	imports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pricelist_imports_total",
		Help: "Price list imports, by outcome.",
	}, []string{"outcome"})
	importedItems := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pricelist_imported_items_total",
		Help: "Items in successfully imported price lists.",
	})
	reg.MustRegister(requests, duration, imports, importedItems)
	return &Metrics{
		requests:      requests,
		duration:      duration,
		imports:       imports,
		importedItems: importedItems,
	}
}

// ObserveRequest records one served request.
func (m *Metrics) ObserveRequest(method, route, status string, elapsed time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	route = normalizeRoute(route)
	m.requests.WithLabelValues(method, route, status).Inc()
	m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// IncImport records an import attempt and, on success, its item count.
func (m *Metrics) IncImport(ok bool, items int) {
	if m == nil || m.imports == nil {
		return
	}
	if !ok {
		m.imports.WithLabelValues("failure").Inc()
		return
	}
	m.imports.WithLabelValues("success").Inc()
	m.importedItems.Add(float64(items))
}

func normalizeRoute(route string) string {
	if route == "" {
		return "unmatched"
	}
	return route
}
