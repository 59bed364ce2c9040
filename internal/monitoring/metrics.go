// Package monitoring exposes Prometheus metrics for the session controller.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Failure kinds for chat exchanges.
const (
	FailureTransport = "transport"
	FailureServer    = "server"
)

// Metrics holds all controller metrics.
type Metrics struct {
	SessionsCreated  prometheus.Counter
	SessionsRestored prometheus.Counter
	SessionsStopped  prometheus.Counter
	CreateFailures   prometheus.Counter
	MessagesSent     prometheus.Counter
	ChatFailures     *prometheus.CounterVec
	HistoryBackfills prometheus.Counter
	SessionActive    prometheus.Gauge
}

// NewMetrics creates a metrics collector registered with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "chatctl_sessions_created_total",
			Help: "Total number of sessions created against the backend",
		}),
		SessionsRestored: factory.NewCounter(prometheus.CounterOpts{
			Name: "chatctl_sessions_restored_total",
			Help: "Total number of sessions restored from local storage",
		}),
		SessionsStopped: factory.NewCounter(prometheus.CounterOpts{
			Name: "chatctl_sessions_stopped_total",
			Help: "Total number of sessions stopped locally",
		}),
		CreateFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "chatctl_session_create_failures_total",
			Help: "Total number of failed session creations",
		}),
		MessagesSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "chatctl_messages_sent_total",
			Help: "Total number of user messages dispatched",
		}),
		ChatFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatctl_chat_failures_total",
				Help: "Total number of failed chat exchanges by kind",
			},
			[]string{"kind"},
		),
		HistoryBackfills: factory.NewCounter(prometheus.CounterOpts{
			Name: "chatctl_history_backfills_total",
			Help: "Total number of transcripts backfilled from remote history",
		}),
		SessionActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chatctl_session_active",
			Help: "Whether a session is currently active (0 or 1)",
		}),
	}
}
