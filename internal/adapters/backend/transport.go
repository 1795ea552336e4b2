package backend

import (
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"rohis/internal/adapters/http/perf"
)

// DefaultSlowBackendMs is the default threshold for slow backend call warnings.
const DefaultSlowBackendMs = 300

// timedTransport logs, records and counts each backend round trip.
type timedTransport struct {
	next      http.RoundTripper
	collector *perf.Collector
	metrics   *Metrics
	threshold float64
}

// NewTransport wraps base with timing, metrics and tracing.
// PRE: none; nil collector or metrics disable those sinks
// POST: returns a RoundTripper whose spans are named "backend <METHOD> <route>"
func NewTransport(base http.RoundTripper, collector *perf.Collector, metrics *Metrics, slowMs int) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if slowMs <= 0 {
		slowMs = DefaultSlowBackendMs
	}
	timed := &timedTransport{
		next:      base,
		collector: collector,
		metrics:   metrics,
		threshold: float64(slowMs),
	}
	return otelhttp.NewTransport(timed,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "backend " + r.Method + " " + Route(r.URL.Path)
		}),
	)
}

// RoundTrip implements http.RoundTripper.
func (t *timedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	elapsed := time.Since(start)
	durationMs := float64(elapsed.Microseconds()) / 1000.0

	route := Route(req.URL.Path)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}

	switch {
	case err != nil:
		slog.Warn("backend_call_failed",
			"method", req.Method,
			"route", route,
			"duration_ms", durationMs,
			"error", err.Error(),
		)
	case durationMs >= t.threshold:
		slog.Warn("slow_backend_call",
			"method", req.Method,
			"route", route,
			"status", status,
			"duration_ms", durationMs,
		)
	default:
		slog.Debug("backend_call",
			"method", req.Method,
			"route", route,
			"status", status,
			"duration_ms", durationMs,
		)
	}

	t.metrics.observe(req.Method, route, status, elapsed)
	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindBackend,
			Path:       req.Method + " " + route,
			StatusCode: status,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
	return resp, err
}
