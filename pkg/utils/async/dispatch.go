package async

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/kujo/pkg/utils/apperr"
)

var pending sync.WaitGroup

// Dispatch executes a handler function asynchronously with proper context and panic recovery.
// The handler runs on a fresh context, so it outlives the request that started it.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	// Create a new background context preserving important values
	newCtx := newBackgroundContext(ctx)

	pending.Add(1)
	go func() {
		defer pending.Done()
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				ctxlog.From(newCtx).Error("Panic in async handler",
					"recover", r,
					"stack", string(stack),
				)
			}
		}()

		if err := handler(newCtx); err != nil {
			apperr.Handle(newCtx, goerr.Wrap(err, "async handler failed"))
		}
	}()
}

// Wait blocks until every dispatched handler has returned or ctx is done
func Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return goerr.Wrap(ctx.Err(), "async handlers still running")
	}
}

// newBackgroundContext creates a new background context preserving the logger and request ID
func newBackgroundContext(ctx context.Context) context.Context {
	newCtx := context.Background()

	logger := ctxlog.From(ctx)
	if logger != nil {
		newCtx = ctxlog.With(newCtx, logger)
	}

	if reqID := middleware.GetReqID(ctx); reqID != "" {
		newCtx = context.WithValue(newCtx, middleware.RequestIDKey, reqID)
	}

	return newCtx
}
