package async

import (
	"context"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
)

// Dispatch executes a handler on a new goroutine, detached from the
// caller's cancellation. Webhook deliveries must be acknowledged
// quickly, but a pipeline run can take minutes; the handler therefore
// gets a fresh background context that only inherits the logger.
//
// Panics are recovered and logged with a stack trace. Errors returned
// by the handler are logged; nobody is left to receive them.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	newCtx := newBackgroundContext(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				ctxlog.From(newCtx).Error("panic in async handler",
					"recover", r,
					"stack", string(stack))
			}
		}()

		if err := handler(newCtx); err != nil {
			ctxlog.From(newCtx).Error("error in async handler", "error", err)
		}
	}()
}

// newBackgroundContext returns context.Background() carrying the
// logger of the original context.
func newBackgroundContext(ctx context.Context) context.Context {
	return ctxlog.With(context.Background(), ctxlog.From(ctx))
}
