package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// NotificationMetrics records outbound WhatsApp delivery attempts.
type NotificationMetrics struct {
	duration *prometheus.HistogramVec
	sent     *prometheus.CounterVec
	failed   *prometheus.CounterVec
	skipped  prometheus.Counter
}

// NewNotificationMetrics registers the notification metrics on the provided registerer.
func NewNotificationMetrics(reg prometheus.Registerer) *NotificationMetrics {
	if reg == nil {
		return &NotificationMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "notification_send_duration_seconds",
		Help:    "Duration of outbound WhatsApp sends in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event"})
	sent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_sent",
		Help: "Successfully delivered WhatsApp messages.",
	}, []string{"event"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_failed",
		Help: "WhatsApp sends that returned an error.",
	}, []string{"event"})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notification_skipped",
		Help: "Sends skipped because messaging is not configured.",
	})
	reg.MustRegister(duration, sent, failed, skipped)
	return &NotificationMetrics{
		duration: duration,
		sent:     sent,
		failed:   failed,
		skipped:  skipped,
	}
}

// ObserveSend records the duration for the named event.
func (n *NotificationMetrics) ObserveSend(event string, duration time.Duration) {
	if n == nil || n.duration == nil {
		return
	}
	n.duration.WithLabelValues(normalizeLabel(event)).Observe(duration.Seconds())
}

// IncSent increments the delivered counter for the named event.
func (n *NotificationMetrics) IncSent(event string) {
	if n == nil || n.sent == nil {
		return
	}
	n.sent.WithLabelValues(normalizeLabel(event)).Inc()
}

// IncFailed increments the failure counter for the named event.
func (n *NotificationMetrics) IncFailed(event string) {
	if n == nil || n.failed == nil {
		return
	}
	n.failed.WithLabelValues(normalizeLabel(event)).Inc()
}

// IncSkipped increments the skipped counter.
func (n *NotificationMetrics) IncSkipped() {
	if n == nil || n.skipped == nil {
		return
	}
	n.skipped.Inc()
}
