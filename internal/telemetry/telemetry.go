// Package telemetry exposes Prometheus metrics about the subscription
// lifecycle. A nil *Recorder is valid and records nothing.
package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pulse"

// Recorder holds the collectors updated by the session.
type Recorder struct {
	ActiveStreams      prometheus.Gauge
	Messages           *prometheus.CounterVec
	DroppedPayloads    prometheus.Counter
	StateTransitions   *prometheus.CounterVec
	Reconciles         prometheus.Counter
	SubscriptionChurn  *prometheus.CounterVec
	DiscardedSelection prometheus.Counter
	HealthMessages     *prometheus.GaugeVec
}

// NewRecorder creates a Recorder and registers its collectors with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		ActiveStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_streams",
			Help:      "Number of stream handles currently subscribed.",
		}),
		Messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_messages_total",
			Help:      "Metric values received, by subscribed metric.",
		}, []string{"metric"}),
		DroppedPayloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_dropped_payloads_total",
			Help:      "Malformed payloads dropped.",
		}),
		StateTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_state_transitions_total",
			Help:      "Stream handle state transitions, by target state.",
		}, []string{"state"}),
		Reconciles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciles_total",
			Help:      "Subscription reconciliations performed.",
		}),
		SubscriptionChurn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscription_changes_total",
			Help:      "Handles added, kept and removed by reconciliation.",
		}, []string{"op"}),
		DiscardedSelection: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discarded_selections_total",
			Help:      "Dashboard fetch results discarded because a newer selection was issued.",
		}),
		HealthMessages: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "health_messages",
			Help:      "Active connectivity messages, by severity.",
		}, []string{"severity"}),
	}
	if reg != nil {
		reg.MustRegister(
			r.ActiveStreams, r.Messages, r.DroppedPayloads, r.StateTransitions,
			r.Reconciles, r.SubscriptionChurn, r.DiscardedSelection, r.HealthMessages,
		)
	}
	return r
}

func (r *Recorder) SetActive(n int) {
	if r == nil {
		return
	}
	r.ActiveStreams.Set(float64(n))
}

func (r *Recorder) Message(metricID string) {
	if r == nil {
		return
	}
	r.Messages.WithLabelValues(metricID).Inc()
}

// Forget deletes the per-metric series of an unsubscribed metric, keeping
// the label set bounded by the active subscriptions.
func (r *Recorder) Forget(metricID string) {
	if r == nil {
		return
	}
	r.Messages.DeleteLabelValues(metricID)
}

func (r *Recorder) Dropped() {
	if r == nil {
		return
	}
	r.DroppedPayloads.Inc()
}

func (r *Recorder) Transition(state string) {
	if r == nil {
		return
	}
	r.StateTransitions.WithLabelValues(state).Inc()
}

// Reconciled records one reconciliation and its diff sizes.
func (r *Recorder) Reconciled(added, kept, removed int) {
	if r == nil {
		return
	}
	r.Reconciles.Inc()
	r.SubscriptionChurn.WithLabelValues("add").Add(float64(added))
	r.SubscriptionChurn.WithLabelValues("keep").Add(float64(kept))
	r.SubscriptionChurn.WithLabelValues("remove").Add(float64(removed))
}

func (r *Recorder) SelectionDiscarded() {
	if r == nil {
		return
	}
	r.DiscardedSelection.Inc()
}

// SetHealth records the current number of warning and danger messages.
func (r *Recorder) SetHealth(warnings, dangers int) {
	if r == nil {
		return
	}
	r.HealthMessages.WithLabelValues("warning").Set(float64(warnings))
	r.HealthMessages.WithLabelValues("danger").Set(float64(dangers))
}

// Serve exposes g on addr at /metrics until ctx is cancelled.
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
