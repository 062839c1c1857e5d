package interfaces

//go:generate moq -out mocks/usecase_mock.go -pkg mocks . WebhookUseCase PipelineUseCase EventProcessor

import (
	"context"

	"github.com/m-mizutani/shipwright/pkg/domain/model"
)

// WebhookUseCase defines the interface for webhook event processing
type WebhookUseCase interface {
	// ProcessEvent records and validates a webhook event
	ProcessEvent(ctx context.Context, event *model.WebhookEvent) error
}

// PipelineUseCase runs the five step release pipeline for a
// triggering tag push.
type PipelineUseCase interface {
	// Execute runs checkout, create-release, setup-runtime, build and
	// publish in order for the given push. The returned run records
	// how far the sequence got; err is non-nil when any step failed.
	Execute(ctx context.Context, push *model.PushInfo) (*model.PipelineRun, error)
}

// EventProcessor consumes parsed webhook payloads and decides whether
// they activate the pipeline.
type EventProcessor interface {
	// ProcessEvent receives the event type from the X-GitHub-Event
	// header and the payload parsed by the GitHub SDK.
	ProcessEvent(ctx context.Context, eventType string, payload any) error
}
