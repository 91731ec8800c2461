// Package metrics registers the prometheus collectors the service exposes
// on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's prometheus collectors.
type Metrics struct {
	RunsTotal          *prometheus.CounterVec
	AlertsCreatedTotal *prometheus.CounterVec
	NotificationsTotal *prometheus.CounterVec
	RunDuration        prometheus.Summary
}

// New registers the collectors on the given registerer and returns them.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "conversion_guard",
			Name:      "runs_total",
			Help:      "Completed task executions by task name and status",
		}, []string{"task", "status"}),
		AlertsCreatedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "conversion_guard",
			Name:      "alerts_created_total",
			Help:      "Alerts written to the alert log by rule",
		}, []string{"rule"}),
		NotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "conversion_guard",
			Name:      "notifications_sent_total",
			Help:      "Digest notifications dispatched by channel and status",
		}, []string{"channel", "status"}),
		RunDuration: prometheus.NewSummary(prometheus.SummaryOpts{
			Namespace: "conversion_guard",
			Name:      "run_duration_seconds",
			Help:      "Time spent on one full orchestrator run",
		}),
	}

	reg.MustRegister(m.RunsTotal, m.AlertsCreatedTotal, m.NotificationsTotal, m.RunDuration)
	return m
}

// Status label values for RunsTotal and NotificationsTotal.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ObserveRun records one task execution.
func (m *Metrics) ObserveRun(task string, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.RunsTotal.WithLabelValues(task, status).Inc()
}

// ObserveNotification records one digest dispatch attempt.
func (m *Metrics) ObserveNotification(channel string, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	m.NotificationsTotal.WithLabelValues(channel, status).Inc()
}
