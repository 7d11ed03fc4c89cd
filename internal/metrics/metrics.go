// Package metrics exposes Prometheus collectors for the RPC layer and the
// ordering engine.
package metrics

import (
	"context"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lifeareas"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	rpcRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "Total number of RPC calls handled.",
		},
		[]string{"procedure", "code"},
	)

	rpcDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "request_duration_seconds",
			Help:      "Duration of RPC calls.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"procedure"},
	)

	ordersSeeded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ordering",
			Name:      "entries_seeded_total",
			Help:      "Order entries created lazily for previously unseen life areas.",
		},
	)

	reorders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ordering",
			Name:      "reorders_total",
			Help:      "Reorder operations by outcome.",
		},
		[]string{"outcome"},
	)

	gapsClosed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ordering",
			Name:      "gaps_closed_total",
			Help:      "Positions compacted after a life area was deleted.",
		},
	)
)

// Reorder outcomes.
const (
	OutcomeMoved     = "moved"
	OutcomeUnchanged = "unchanged"
	OutcomeNotFound  = "not_found"
	OutcomeError     = "error"
)

func init() {
	Registry.MustRegister(
		rpcRequests,
		rpcDuration,
		ordersSeeded,
		reorders,
		gapsClosed,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordSeeded counts order entries created by the seeder.
func RecordSeeded(n int) {
	if n > 0 {
		ordersSeeded.Add(float64(n))
	}
}

// RecordReorder counts one reorder by outcome.
func RecordReorder(outcome string) {
	reorders.WithLabelValues(outcome).Inc()
}

// RecordGapClosed counts a deletion that compacted positions.
func RecordGapClosed() {
	gapsClosed.Inc()
}

// Interceptor returns a Connect interceptor recording call counts and durations.
func Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			rpcRequests.WithLabelValues(procedure, code).Inc()
			rpcDuration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())
			return resp, err
		}
	}
}
