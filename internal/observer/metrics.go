package observer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsEnabled = true

	webhookEventLabels = []string{"event_type", "organization_id"}
	dbOperationLabels  = []string{"operation", "entity", "organization_id", "status"}
	outcomeLabels      = []string{"outcome"}

	// WebhookEventsReceivedTotal counts every webhook delivery, including
	// event types the pipeline ignores.
	WebhookEventsReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadtalk_webhook_events_received_total",
			Help: "Total number of webhook events received.",
		},
		webhookEventLabels,
	)
	WebhookEventsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadtalk_webhook_events_processed_total",
			Help: "Total number of webhook events fully processed.",
		},
		webhookEventLabels,
	)
	WebhookEventsIgnoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadtalk_webhook_events_ignored_total",
			Help: "Total number of webhook events ignored by event type.",
		},
		webhookEventLabels,
	)
	WebhookEventsFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadtalk_webhook_events_failed_total",
			Help: "Total number of webhook events that failed identity resolution or persistence.",
		},
		webhookEventLabels,
	)

	DbOperationDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "leadtalk_db_operation_duration_seconds",
			Help:    "Histogram of database operation durations.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		dbOperationLabels,
	)

	CompletionRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadtalk_completion_requests_total",
			Help: "Total number of completion-service requests by outcome.",
		},
		outcomeLabels,
	)
	CompletionRequestDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "leadtalk_completion_request_duration_seconds",
			Help:    "Histogram of completion-service request durations.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	GatewaySendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadtalk_gateway_sends_total",
			Help: "Total number of messaging-gateway send attempts by outcome.",
		},
		outcomeLabels,
	)
)

// InitMetrics toggles metric collection. Registration always happens at
// package init; this only gates the observe helpers.
func InitMetrics(enabled bool) {
	metricsEnabled = enabled
}

// IncWebhookEventReceived records an inbound webhook delivery.
func IncWebhookEventReceived(eventType, organizationID string) {
	if !metricsEnabled {
		return
	}
	WebhookEventsReceivedTotal.WithLabelValues(eventType, organizationID).Inc()
}

// IncWebhookEventProcessed records a fully processed webhook delivery.
func IncWebhookEventProcessed(eventType, organizationID string) {
	if !metricsEnabled {
		return
	}
	WebhookEventsProcessedTotal.WithLabelValues(eventType, organizationID).Inc()
}

// IncWebhookEventIgnored records a webhook delivery ignored by event type.
func IncWebhookEventIgnored(eventType, organizationID string) {
	if !metricsEnabled {
		return
	}
	WebhookEventsIgnoredTotal.WithLabelValues(eventType, organizationID).Inc()
}

// IncWebhookEventFailed records a webhook delivery that failed processing.
func IncWebhookEventFailed(eventType, organizationID string) {
	if !metricsEnabled {
		return
	}
	WebhookEventsFailedTotal.WithLabelValues(eventType, organizationID).Inc()
}

// ObserveDbOperationDuration records the duration and outcome of a database
// operation.
func ObserveDbOperationDuration(operation, entity, organizationID string, duration time.Duration, err error) {
	if !metricsEnabled {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	DbOperationDurationSeconds.WithLabelValues(operation, entity, organizationID, status).Observe(duration.Seconds())
}

// ObserveCompletionRequest records a completion-service call.
func ObserveCompletionRequest(duration time.Duration, err error) {
	if !metricsEnabled {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	CompletionRequestsTotal.WithLabelValues(outcome).Inc()
	CompletionRequestDurationSeconds.Observe(duration.Seconds())
}

// IncGatewaySend records a messaging-gateway send attempt.
func IncGatewaySend(err error) {
	if !metricsEnabled {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	GatewaySendsTotal.WithLabelValues(outcome).Inc()
}
