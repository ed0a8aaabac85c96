// Package metrics provides Prometheus metrics for ObraGuard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "obraguard"

// Alerting metrics
var (
	// AlertsCreatedTotal counts deviation alerts by severity tier.
	AlertsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerting",
			Name:      "alerts_created_total",
			Help:      "Total number of deviation alerts created",
		},
		[]string{"severity"},
	)

	// EvaluationDuration tracks how long a full evaluation pass takes.
	EvaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "alerting",
			Name:      "evaluation_duration_seconds",
			Help:      "Duration of project deviation evaluation passes",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)
)

// Notification metrics
var (
	// NotificationsSentTotal counts successful deliveries by channel.
	NotificationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifier",
			Name:      "notifications_sent_total",
			Help:      "Total number of notifications delivered",
		},
		[]string{"channel"},
	)

	// NotificationsFailedTotal counts failed delivery attempts by channel.
	NotificationsFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifier",
			Name:      "notifications_failed_total",
			Help:      "Total number of failed notification delivery attempts",
		},
		[]string{"channel"},
	)

	// DispatchDuration tracks how long a dispatch pass takes.
	DispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "notifier",
			Name:      "dispatch_duration_seconds",
			Help:      "Duration of notification dispatch passes",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)
)

// HTTP metrics
var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
)
