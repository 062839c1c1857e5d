package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
)

// WebhookHandler handles GitHub webhooks
type WebhookHandler struct {
	secret    string
	webhookUC interfaces.WebhookUseCase
	processor interfaces.EventProcessor
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(secret string, webhookUC interfaces.WebhookUseCase, processor interfaces.EventProcessor) *WebhookHandler {
	return &WebhookHandler{
		secret:    secret,
		webhookUC: webhookUC,
		processor: processor,
	}
}

// Handle processes webhook requests
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	// Read payload
	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error("Failed to read request body", "error", err)
		metricWebhookEvents.WithLabelValues(webhookResultInvalid).Inc()
		writeError(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	// Verify signature
	signature := r.Header.Get("X-Hub-Signature-256")
	if !h.verifySignature(body, signature) {
		logger.Warn("Invalid webhook signature")
		metricWebhookEvents.WithLabelValues(webhookResultRejected).Inc()
		writeError(ctx, w, goerr.New("invalid signature"), http.StatusUnauthorized)
		return
	}

	// Parse event using GitHub SDK
	eventType := r.Header.Get("X-GitHub-Event")
	payload, err := github.ParseWebHook(eventType, body)
	if err != nil {
		logger.Error("Failed to parse webhook payload", "error", err)
		metricWebhookEvents.WithLabelValues(webhookResultInvalid).Inc()
		writeError(ctx, w, goerr.Wrap(err, "invalid JSON payload"), http.StatusBadRequest)
		return
	}

	// Create webhook event
	event := &model.WebhookEvent{
		ID:         r.Header.Get("X-GitHub-Delivery"),
		Type:       model.WebhookEventType(eventType),
		ReceivedAt: time.Now(),
		RawPayload: body,
	}

	// Extract event-specific information using GitHub SDK types
	switch e := payload.(type) {
	case *github.PushEvent:
		if e.Ref != nil {
			event.Ref = *e.Ref
		}
		if e.Repo != nil && e.Repo.FullName != nil {
			event.Repository = *e.Repo.FullName
		}
		if e.Sender != nil && e.Sender.Login != nil {
			event.Sender = *e.Sender.Login
		}
	case *github.PingEvent:
		if e.Repo != nil && e.Repo.FullName != nil {
			event.Repository = *e.Repo.FullName
		}
		if e.Sender != nil && e.Sender.Login != nil {
			event.Sender = *e.Sender.Login
		}
	default:
		event.Type = model.EventTypeUnknown
	}

	// Record event via UseCase
	if err := h.webhookUC.ProcessEvent(ctx, event); err != nil {
		logger.Error("Failed to process webhook event", "error", err)
		metricWebhookEvents.WithLabelValues(webhookResultError).Inc()
		writeError(ctx, w, err, http.StatusInternalServerError)
		return
	}

	// Hand the parsed payload to the event processor, which dispatches
	// pipeline work asynchronously. The delivery is acknowledged as
	// soon as that decision is made.
	if h.processor != nil {
		if err := h.processor.ProcessEvent(ctx, eventType, payload); err != nil {
			logger.Error("Failed to dispatch webhook event", "error", err)
			metricWebhookEvents.WithLabelValues(webhookResultError).Inc()
			writeError(ctx, w, err, http.StatusInternalServerError)
			return
		}
	}

	// Success response
	metricWebhookEvents.WithLabelValues(webhookResultAccepted).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": "success",
	}); err != nil {
		logger.Error("Failed to encode success response", "error", err)
	}
}

// verifySignature verifies the webhook signature
func (h *WebhookHandler) verifySignature(payload []byte, signature string) bool {
	if signature == "" {
		return false
	}

	// Remove "sha256=" prefix if present
	signature = strings.TrimPrefix(signature, "sha256=")

	// Calculate HMAC-SHA256
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(payload)
	expectedMAC := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expectedMAC))
}
