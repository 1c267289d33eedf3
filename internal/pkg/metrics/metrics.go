package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the process registry and the instrument handles the
// handlers and usecases record into.
type Metrics struct {
	Registry *prometheus.Registry

	// WebhookEvents counts processed notifications by event name and
	// outcome (processed, duplicate, ignored, unresolved, error).
	WebhookEvents *prometheus.CounterVec

	// IntentResolutions tracks which resolver recovered the original
	// request for a payment notification.
	IntentResolutions *prometheus.CounterVec

	// HTTPRequests counts handled requests by route and status class.
	HTTPRequests *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		WebhookEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "studio",
			Subsystem: "webhook",
			Name:      "events_total",
			Help:      "Payment webhook notifications by event and outcome.",
		}, []string{"event", "outcome"}),
		IntentResolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "studio",
			Subsystem: "webhook",
			Name:      "intent_resolutions_total",
			Help:      "Which resolver recovered the payment intent.",
		}, []string{"source"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "studio",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status class.",
		}, []string{"route", "status"}),
	}
}
