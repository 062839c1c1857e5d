package http

import "github.com/prometheus/client_golang/prometheus"

const (
	webhookResultAccepted = "accepted"
	webhookResultRejected = "rejected"
	webhookResultInvalid  = "invalid"
	webhookResultError    = "error"
)

var metricWebhookEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "shipwright",
	Subsystem: "webhook",
	Name:      "events_total",
	Help:      "Webhook deliveries received, labelled by handling result.",
}, []string{"result"})

func init() {
	prometheus.MustRegister(metricWebhookEvents)
}
