package interfaces

import (
	"context"

	"github.com/m-mizutani/shipwright/pkg/domain/model"
)

// Notifier reports finished pipeline runs to humans. Notification
// failures are logged by callers and never change a run's outcome.
type Notifier interface {
	NotifyRun(ctx context.Context, run *model.PipelineRun) error
}
