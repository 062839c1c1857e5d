package model

import "time"

// WebhookEventType represents the type of webhook event received
type WebhookEventType string

const (
	EventTypePush    WebhookEventType = "push"
	EventTypePing    WebhookEventType = "ping"
	EventTypeUnknown WebhookEventType = "unknown"
)

// WebhookEvent represents a webhook event received from GitHub
type WebhookEvent struct {
	ID         string           // Retrieved from X-GitHub-Delivery header
	Type       WebhookEventType // Retrieved from X-GitHub-Event header
	Action     string           // Event action (empty for push events)
	Repository string           // Repository name
	Sender     string           // Sender username
	Ref        string           // Pushed reference (push events only)
	ReceivedAt time.Time        // Time when the event was received
	RawPayload []byte           // Raw JSON payload
}

// IsSupportedEvent checks if the event can start a pipeline run. Only
// push events do; ping is acknowledged but never processed further.
func (e *WebhookEvent) IsSupportedEvent() bool {
	return e.Type == EventTypePush
}
