// Package metrics exposes Prometheus counters for the HTTP API and the
// domain event stream.
package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rohanjain3/AGRISMART-12/internal/entity"
	"github.com/rohanjain3/AGRISMART-12/internal/messaging"
)

const namespace = "agrismart"

// Metrics owns a registry and the collectors registered on it.
type Metrics struct {
	registry *prometheus.Registry

	RequestDuration *prometheus.HistogramVec
	RequestCounter  *prometheus.CounterVec
	ErrorCounter    *prometheus.CounterVec
	EventCounter    *prometheus.CounterVec
	OrderValue      prometheus.Counter
}

// New creates the collectors on a fresh registry, together with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),

		RequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests",
			},
			[]string{"method", "path"},
		),

		ErrorCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_errors_total",
				Help:      "Total number of API errors",
			},
			[]string{"method", "path", "status"},
		),

		EventCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "domain_events_total",
				Help:      "Total number of domain events seen on the event bus",
			},
			[]string{"topic", "event_type"},
		),

		OrderValue: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_value_rupees_total",
			Help:      "Sum of the totals of placed orders",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware tracks request counts, errors and durations. Requests are
// labelled with the matched route pattern to keep cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(rec.status)

		m.RequestCounter.WithLabelValues(r.Method, path).Inc()
		m.RequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
		if rec.status >= http.StatusBadRequest {
			m.ErrorCounter.WithLabelValues(r.Method, path, status).Inc()
		}
	})
}

// CountEvent is a messaging.Handler that counts events by topic and type
// and sums the value of placed orders.
func (m *Metrics) CountEvent(ctx context.Context, msg messaging.Message) error {
	m.EventCounter.WithLabelValues(msg.Topic, msg.Type).Inc()

	if msg.Type == (entity.OrderPlaced{}).EventType() {
		var placed entity.OrderPlaced
		if err := json.Unmarshal(msg.Payload, &placed); err != nil {
			return fmt.Errorf("failed to decode OrderPlaced: %w", err)
		}
		if placed.Total > 0 {
			m.OrderValue.Add(placed.Total)
		}
	}
	return nil
}
