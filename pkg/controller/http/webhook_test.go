package http_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/go-github/v75/github"
	controller "github.com/m-mizutani/shipwright/pkg/controller/http"
	"github.com/m-mizutani/shipwright/pkg/usecase"
)

var errTest = errors.New("processor unavailable")

// generateSignature generates HMAC-SHA256 signature for testing
func generateSignature(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// mockProcessor records the payloads handed to the event processor
type mockProcessor struct {
	mu     sync.Mutex
	events []string
	pushes []*github.PushEvent
	err    error
}

func (m *mockProcessor) ProcessEvent(ctx context.Context, eventType string, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, eventType)
	if push, ok := payload.(*github.PushEvent); ok {
		m.pushes = append(m.pushes, push)
	}
	return m.err
}

func tagPushPayload() map[string]interface{} {
	return map[string]interface{}{
		"ref":     "refs/tags/v1.2.3",
		"after":   "abc123def456",
		"deleted": false,
		"repository": map[string]interface{}{
			"name":      "mylib",
			"full_name": "owner/mylib",
			"owner": map[string]interface{}{
				"login": "owner",
			},
		},
		"pusher": map[string]interface{}{
			"name": "octocat",
		},
		"sender": map[string]interface{}{
			"login": "octocat",
		},
	}
}

func TestWebhookHandler_SignatureVerification(t *testing.T) {
	secret := "test-secret"
	uc := usecase.NewWebhook()
	handler := controller.NewWebhookHandler(secret, uc, &mockProcessor{})

	payloadBytes, _ := json.Marshal(tagPushPayload())

	tests := []struct {
		name           string
		payload        []byte
		signature      string
		wantStatusCode int
	}{
		{
			name:           "Valid signature",
			payload:        payloadBytes,
			signature:      generateSignature(secret, payloadBytes),
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "Invalid signature",
			payload:        payloadBytes,
			signature:      "sha256=invalid",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "Missing signature",
			payload:        payloadBytes,
			signature:      "",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "Signature for different payload",
			payload:        payloadBytes,
			signature:      generateSignature(secret, []byte(`{"ref":"refs/tags/v9.9.9"}`)),
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/hooks/github", bytes.NewReader(tt.payload))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-GitHub-Event", "push")
			req.Header.Set("X-GitHub-Delivery", "test-delivery")
			req.Header.Set("X-Hub-Signature-256", tt.signature)

			w := httptest.NewRecorder()
			handler.Handle(w, req)

			if w.Code != tt.wantStatusCode {
				t.Errorf("Handle() status = %v, want %v", w.Code, tt.wantStatusCode)
			}
		})
	}
}

func TestWebhookHandler_EventParsing(t *testing.T) {
	secret := "test-secret"

	tests := []struct {
		name           string
		eventType      string
		payload        map[string]interface{}
		wantStatusCode int
		wantDispatched int
	}{
		{
			name:           "Tag push event",
			eventType:      "push",
			payload:        tagPushPayload(),
			wantStatusCode: http.StatusOK,
			wantDispatched: 1,
		},
		{
			name:      "Branch push event",
			eventType: "push",
			payload: map[string]interface{}{
				"ref":   "refs/heads/main",
				"after": "abc123def456",
				"repository": map[string]interface{}{
					"name":      "mylib",
					"full_name": "owner/mylib",
					"owner": map[string]interface{}{
						"login": "owner",
					},
				},
				"sender": map[string]interface{}{
					"login": "octocat",
				},
			},
			wantStatusCode: http.StatusOK,
			wantDispatched: 1,
		},
		{
			name:      "Ping event",
			eventType: "ping",
			payload: map[string]interface{}{
				"zen":     "Keep it logically awesome.",
				"hook_id": 1,
				"repository": map[string]interface{}{
					"full_name": "owner/mylib",
				},
				"sender": map[string]interface{}{
					"login": "octocat",
				},
			},
			wantStatusCode: http.StatusOK,
			wantDispatched: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := usecase.NewWebhook()
			processor := &mockProcessor{}
			handler := controller.NewWebhookHandler(secret, uc, processor)

			payloadBytes, _ := json.Marshal(tt.payload)
			signature := generateSignature(secret, payloadBytes)

			req := httptest.NewRequest(http.MethodPost, "/hooks/github", bytes.NewReader(payloadBytes))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-GitHub-Event", tt.eventType)
			req.Header.Set("X-GitHub-Delivery", "test-delivery")
			req.Header.Set("X-Hub-Signature-256", signature)

			w := httptest.NewRecorder()
			handler.Handle(w, req)

			if w.Code != tt.wantStatusCode {
				t.Errorf("Handle() status = %v, want %v, body = %s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if len(processor.events) != tt.wantDispatched {
				t.Errorf("Processor received %d events, want %d", len(processor.events), tt.wantDispatched)
			}

			if tt.wantStatusCode == http.StatusOK {
				var response map[string]string
				if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
					t.Errorf("Failed to decode response: %v", err)
				}
				if response["status"] != "success" {
					t.Errorf("Response status = %v, want success", response["status"])
				}
			}
		})
	}
}

func TestWebhookHandler_PassesParsedPushEvent(t *testing.T) {
	secret := "test-secret"
	uc := usecase.NewWebhook()
	processor := &mockProcessor{}
	handler := controller.NewWebhookHandler(secret, uc, processor)

	payloadBytes, _ := json.Marshal(tagPushPayload())
	signature := generateSignature(secret, payloadBytes)

	req := httptest.NewRequest(http.MethodPost, "/hooks/github", bytes.NewReader(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", "push")
	req.Header.Set("X-GitHub-Delivery", "test-delivery")
	req.Header.Set("X-Hub-Signature-256", signature)

	w := httptest.NewRecorder()
	handler.Handle(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Handle() status = %v, want %v, body = %s", w.Code, http.StatusOK, w.Body.String())
	}

	if len(processor.pushes) != 1 {
		t.Fatalf("Processor received %d push events, want 1", len(processor.pushes))
	}

	push := processor.pushes[0]
	if got := push.GetRef(); got != "refs/tags/v1.2.3" {
		t.Errorf("Ref = %v, want refs/tags/v1.2.3", got)
	}
	if got := push.GetAfter(); got != "abc123def456" {
		t.Errorf("After = %v, want abc123def456", got)
	}
	if got := push.GetRepo().GetName(); got != "mylib" {
		t.Errorf("Repo name = %v, want mylib", got)
	}
	if got := push.GetRepo().GetOwner().GetLogin(); got != "owner" {
		t.Errorf("Repo owner = %v, want owner", got)
	}
}

func TestWebhookHandler_ProcessorError(t *testing.T) {
	secret := "test-secret"
	uc := usecase.NewWebhook()
	processor := &mockProcessor{err: errTest}
	handler := controller.NewWebhookHandler(secret, uc, processor)

	payloadBytes, _ := json.Marshal(tagPushPayload())
	signature := generateSignature(secret, payloadBytes)

	req := httptest.NewRequest(http.MethodPost, "/hooks/github", bytes.NewReader(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", "push")
	req.Header.Set("X-GitHub-Delivery", "test-delivery")
	req.Header.Set("X-Hub-Signature-256", signature)

	w := httptest.NewRecorder()
	handler.Handle(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Handle() status = %v, want %v", w.Code, http.StatusInternalServerError)
	}
}

func TestWebhookHandler_Integration(t *testing.T) {
	ctx := context.Background()
	secret := "integration-test-secret"
	uc := usecase.NewWebhook()
	processor := &mockProcessor{}

	server, err := controller.NewServer(
		ctx,
		uc,
		processor,
		controller.WithAddr("localhost:0"),
		controller.WithWebhookSecret(secret),
	)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	ts := httptest.NewServer(server.Handler)
	defer ts.Close()

	payloadBytes, _ := json.Marshal(tagPushPayload())
	signature := generateSignature(secret, payloadBytes)

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/hooks/github", bytes.NewReader(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", "push")
	req.Header.Set("X-GitHub-Delivery", "integration-test")
	req.Header.Set("X-Hub-Signature-256", signature)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Failed to send request: %v", err)
	}
	defer func() {
		_ = resp.Body.Close() // Error ignored in test
	}()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Status code = %v, want %v", resp.StatusCode, http.StatusOK)
	}

	if len(processor.pushes) != 1 {
		t.Errorf("Processor received %d push events, want 1", len(processor.pushes))
	}
}
