package async_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/shipwright/pkg/utils/async"
)

// safeBuffer is a thread-safe buffer for concurrent logging
type safeBuffer struct {
	b bytes.Buffer
	m sync.Mutex
}

func (sb *safeBuffer) Write(p []byte) (int, error) {
	sb.m.Lock()
	defer sb.m.Unlock()
	return sb.b.Write(p)
}

func (sb *safeBuffer) String() string {
	sb.m.Lock()
	defer sb.m.Unlock()
	return sb.b.String()
}

func TestDispatch(t *testing.T) {
	t.Run("executes handler asynchronously", func(t *testing.T) {
		ctx := context.Background()
		var wg sync.WaitGroup
		executed := false

		wg.Add(1)
		async.Dispatch(ctx, func(ctx context.Context) error {
			defer wg.Done()
			executed = true
			return nil
		})

		wg.Wait()
		gt.True(t, executed)
	})

	t.Run("handles errors without crashing", func(t *testing.T) {
		ctx := context.Background()
		var wg sync.WaitGroup

		wg.Add(1)
		async.Dispatch(ctx, func(ctx context.Context) error {
			defer wg.Done()
			return errors.New("test error")
		})

		wg.Wait()
	})

	t.Run("recovers from panic with stack trace", func(t *testing.T) {
		logBuf := &safeBuffer{}
		logged := make(chan struct{}, 1)
		handler := notifyHandler{
			Handler: slog.NewTextHandler(logBuf, &slog.HandlerOptions{Level: slog.LevelError}),
			done:    logged,
		}
		ctx := ctxlog.With(context.Background(), slog.New(handler))

		async.Dispatch(ctx, func(ctx context.Context) error {
			panic("test panic with stack")
		})

		select {
		case <-logged:
		case <-time.After(1 * time.Second):
			t.Fatal("panic was not logged within timeout")
		}

		logOutput := logBuf.String()
		gt.True(t, strings.Contains(logOutput, "panic in async handler"))
		gt.True(t, strings.Contains(logOutput, "test panic with stack"))
		gt.True(t, strings.Contains(logOutput, "goroutine"))
	})

	t.Run("detaches from caller cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		var wg sync.WaitGroup
		wg.Add(1)

		async.Dispatch(ctx, func(newCtx context.Context) error {
			defer wg.Done()

			cancel()

			select {
			case <-newCtx.Done():
				t.Error("new context was cancelled")
			default:
			}

			return nil
		})

		wg.Wait()
	})

	t.Run("preserves logger", func(t *testing.T) {
		ctx := ctxlog.With(context.Background(), slog.Default())

		var wg sync.WaitGroup
		wg.Add(1)

		async.Dispatch(ctx, func(newCtx context.Context) error {
			defer wg.Done()
			gt.NotNil(t, ctxlog.From(newCtx))
			return nil
		})

		wg.Wait()
	})
}

// notifyHandler signals after each record so tests can wait for the
// asynchronous log write.
type notifyHandler struct {
	slog.Handler
	done chan struct{}
}

func (h notifyHandler) Handle(ctx context.Context, r slog.Record) error {
	err := h.Handler.Handle(ctx, r)
	select {
	case h.done <- struct{}{}:
	default:
	}
	return err
}
