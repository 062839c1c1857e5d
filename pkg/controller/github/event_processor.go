package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/shipwright/pkg/domain/interfaces"
	"github.com/m-mizutani/shipwright/pkg/domain/model"
	"github.com/m-mizutani/shipwright/pkg/utils/async"
)

// EventProcessor inspects GitHub webhook events and starts the release
// pipeline for pushes of matching tags.
type EventProcessor struct {
	pipelineUC interfaces.PipelineUseCase
	trigger    model.Trigger
	dispatch   func(ctx context.Context, handler func(ctx context.Context) error)
}

// Option is a functional option for EventProcessor configuration
type Option func(*EventProcessor)

// WithDispatcher replaces the async dispatcher. Tests use this to run
// the pipeline synchronously.
func WithDispatcher(dispatch func(ctx context.Context, handler func(ctx context.Context) error)) Option {
	return func(p *EventProcessor) {
		p.dispatch = dispatch
	}
}

// NewEventProcessor creates a new GitHub event processor
func NewEventProcessor(pipelineUC interfaces.PipelineUseCase, trigger model.Trigger, opts ...Option) *EventProcessor {
	p := &EventProcessor{
		pipelineUC: pipelineUC,
		trigger:    trigger,
		dispatch:   async.Dispatch,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessEvent processes a GitHub webhook event
func (p *EventProcessor) ProcessEvent(ctx context.Context, eventType string, payload any) error {
	logger := ctxlog.From(ctx)

	switch eventType {
	case "push":
		return p.processPushEvent(ctx, payload)
	default:
		logger.Info("Ignoring unsupported event type", "event_type", eventType)
		return nil
	}
}

// processPushEvent examines a push event and dispatches a pipeline run
// when the pushed reference is a tag matching the trigger patterns.
// Non-matching pushes are acknowledged without further work.
func (p *EventProcessor) processPushEvent(ctx context.Context, payload any) error {
	logger := ctxlog.From(ctx)

	pushEvent, ok := payload.(*github.PushEvent)
	if !ok {
		logger.Warn("Invalid push event payload")
		return nil
	}

	push, err := p.extractPushInfo(pushEvent)
	if err != nil {
		logger.Error("Failed to extract push info", "error", err)
		return err
	}

	if push.Deleted {
		logger.Info("Ignoring deleted reference",
			"repository", push.FullName(),
			"ref", push.Ref,
		)
		return nil
	}

	if !push.IsTagPush() {
		logger.Info("Ignoring non-tag push",
			"repository", push.FullName(),
			"ref", push.Ref,
		)
		return nil
	}

	if !p.trigger.Matches(push.Tag) {
		logger.Info("Tag does not match trigger patterns",
			"repository", push.FullName(),
			"tag", push.Tag,
			"patterns", p.trigger.Patterns(),
		)
		return nil
	}

	logger.Info("Push activates release pipeline",
		"repository", push.FullName(),
		"ref", push.Ref,
		"tag", push.Tag,
		"commit_sha", push.CommitSHA,
	)

	// The delivery is acknowledged now; the run happens on a detached
	// goroutine and records its own outcome.
	p.dispatch(ctx, func(ctx context.Context) error {
		_, err := p.pipelineUC.Execute(ctx, push)
		return err
	})

	return nil
}

// extractPushInfo extracts push information from a GitHub push event
func (p *EventProcessor) extractPushInfo(event *github.PushEvent) (*model.PushInfo, error) {
	if event.GetRepo() == nil {
		return nil, fmt.Errorf("missing repository information in push event")
	}

	// Use Get*() helper methods for concise and nil-safe field access
	owner := event.GetRepo().GetOwner().GetLogin()
	if owner == "" {
		owner = event.GetRepo().GetOwner().GetName()
	}
	repo := event.GetRepo().GetName()
	ref := event.GetRef()

	if owner == "" || repo == "" || ref == "" {
		return nil, fmt.Errorf("missing required fields: owner=%s, repo=%s, ref=%s", owner, repo, ref)
	}

	sha := event.GetAfter()
	if sha == "" {
		sha = event.GetHeadCommit().GetID()
	}

	tag, _ := model.RefToTag(ref)

	return &model.PushInfo{
		Owner:     owner,
		Repo:      repo,
		Ref:       ref,
		Tag:       tag,
		CommitSHA: sha,
		Deleted:   event.GetDeleted(),
		Pusher:    event.GetPusher().GetName(),
	}, nil
}
