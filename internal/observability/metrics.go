package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline collectors. Label values are drawn from small fixed sets (reply
// sources, model call outcomes), so cardinality stays bounded.
var (
	repliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_replies_total",
			Help: "Chat replies by source.",
		},
		[]string{"source"},
	)

	rejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_rejections_total",
			Help: "Chat requests rejected before a reply, by reason.",
		},
		[]string{"reason"},
	)

	modelCalls = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "concierge_model_call_duration_seconds",
			Help:    "Language model call latency by outcome.",
			Buckets: []float64{.1, .25, .5, 1, 2, 4, 8, 15, 30},
		},
		[]string{"outcome"},
	)

	eventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "concierge_events_total",
			Help: "Widget events recorded, by type.",
		},
		[]string{"event_type"},
	)
)

func init() {
	prometheus.MustRegister(repliesTotal, rejectionsTotal, modelCalls, eventsTotal)
}

// Rejection reasons.
const (
	RejectAuth       = "auth"
	RejectValidation = "validation"
	RejectRate       = "rate"
	RejectQuota      = "quota"
	RejectNotFound   = "not_found"
)

// Model call outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// ObserveReply counts one reply produced with the given source.
func ObserveReply(source string) { repliesTotal.WithLabelValues(source).Inc() }

// ObserveRejection counts one request rejected for reason.
func ObserveRejection(reason string) { rejectionsTotal.WithLabelValues(reason).Inc() }

// ObserveModelCall records the latency of one model call.
func ObserveModelCall(outcome string, d time.Duration) {
	modelCalls.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveEvent counts one stored widget event.
func ObserveEvent(eventType string) { eventsTotal.WithLabelValues(eventType).Inc() }
