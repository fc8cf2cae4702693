// Package metrics exposes Prometheus instrumentation for the poll pipeline.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline counters and gauges.
type Metrics struct {
	registry *prometheus.Registry

	Cycles             prometheus.Counter
	FetchErrors        prometheus.Counter
	ParseFailures      prometheus.Counter
	NewDisclosures     prometheus.Counter
	NotifySent         prometheus.Counter
	NotifyFailed       prometheus.Counter
	SubscribersDropped prometheus.Counter
	ActiveSubscribers  prometheus.Gauge
}

// New creates a metrics set on its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Cycles: factory.NewCounter(prometheus.CounterOpts{
			Name: "idxbot_cycles_total",
			Help: "Completed poll cycles.",
		}),
		FetchErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "idxbot_fetch_errors_total",
			Help: "Upstream fetch failures.",
		}),
		ParseFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "idxbot_parse_failures_total",
			Help: "Raw items skipped because they could not be normalized.",
		}),
		NewDisclosures: factory.NewCounter(prometheus.CounterOpts{
			Name: "idxbot_disclosures_new_total",
			Help: "Disclosures stored for the first time.",
		}),
		NotifySent: factory.NewCounter(prometheus.CounterOpts{
			Name: "idxbot_notify_sent_total",
			Help: "Notification messages delivered.",
		}),
		NotifyFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "idxbot_notify_failed_total",
			Help: "Notification deliveries that failed.",
		}),
		SubscribersDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "idxbot_subscribers_dropped_total",
			Help: "Subscribers deactivated after a permanent delivery failure.",
		}),
		ActiveSubscribers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "idxbot_active_subscribers",
			Help: "Currently active subscribers.",
		}),
	}
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve runs an HTTP listener exposing /metrics and /healthz until the
// context is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
