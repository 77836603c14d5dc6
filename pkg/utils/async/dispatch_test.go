package async_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/kujo/pkg/utils/async"
	"go.uber.org/goleak"
)

func waitFor(t *testing.T, wg *sync.WaitGroup, timeout time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatal("Async handler did not complete within timeout")
	}
}

func TestDispatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Run("Execute handler asynchronously", func(t *testing.T) {
		var wg sync.WaitGroup
		executed := false

		wg.Add(1)
		async.Dispatch(context.Background(), func(ctx context.Context) error {
			defer wg.Done()
			executed = true
			return nil
		})

		waitFor(t, &wg, time.Second)
		gt.True(t, executed)
	})

	t.Run("Handle errors in async handler", func(t *testing.T) {
		var wg sync.WaitGroup

		wg.Add(1)
		async.Dispatch(context.Background(), func(ctx context.Context) error {
			defer wg.Done()
			return goerr.New("test error")
		})

		waitFor(t, &wg, time.Second)
	})

	t.Run("Recover from panic in async handler", func(t *testing.T) {
		var wg sync.WaitGroup

		wg.Add(1)
		async.Dispatch(context.Background(), func(ctx context.Context) error {
			defer wg.Done()
			panic("test panic")
		})

		waitFor(t, &wg, time.Second)
	})

	t.Run("Multiple async dispatches", func(t *testing.T) {
		var wg sync.WaitGroup
		var mu sync.Mutex
		counter := 0

		for i := 0; i < 10; i++ {
			wg.Add(1)
			async.Dispatch(context.Background(), func(ctx context.Context) error {
				defer wg.Done()
				mu.Lock()
				counter++
				mu.Unlock()
				return nil
			})
		}

		waitFor(t, &wg, 2*time.Second)
		gt.Equal(t, counter, 10)
	})
}

func TestContextPreservation(t *testing.T) {
	t.Run("Logger is preserved in background context", func(t *testing.T) {
		ctx := ctxlog.With(context.Background(), ctxlog.From(context.Background()))

		var wg sync.WaitGroup
		var hasLogger bool

		wg.Add(1)
		async.Dispatch(ctx, func(ctx context.Context) error {
			defer wg.Done()
			hasLogger = ctxlog.From(ctx) != nil
			return nil
		})

		waitFor(t, &wg, time.Second)
		gt.True(t, hasLogger)
	})

	t.Run("Request ID is preserved in background context", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")

		var wg sync.WaitGroup
		var reqID string

		wg.Add(1)
		async.Dispatch(ctx, func(ctx context.Context) error {
			defer wg.Done()
			reqID = middleware.GetReqID(ctx)
			return nil
		})

		waitFor(t, &wg, time.Second)
		gt.Equal(t, reqID, "req-42")
	})

	t.Run("Cancellation of the parent does not reach the handler", func(t *testing.T) {
		parent, cancel := context.WithCancel(context.Background())
		cancel()

		var wg sync.WaitGroup
		var handlerErr error

		wg.Add(1)
		async.Dispatch(parent, func(ctx context.Context) error {
			defer wg.Done()
			handlerErr = ctx.Err()
			return nil
		})

		waitFor(t, &wg, time.Second)
		gt.NoError(t, handlerErr)
	})
}

func TestWait(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Run("returns after handlers finish", func(t *testing.T) {
		var mu sync.Mutex
		count := 0
		for i := 0; i < 3; i++ {
			async.Dispatch(context.Background(), func(ctx context.Context) error {
				time.Sleep(10 * time.Millisecond)
				mu.Lock()
				count++
				mu.Unlock()
				return nil
			})
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		gt.NoError(t, async.Wait(ctx))

		mu.Lock()
		defer mu.Unlock()
		gt.Equal(t, count, 3)
	})

	t.Run("returns immediately without handlers", func(t *testing.T) {
		gt.NoError(t, async.Wait(context.Background()))
	})
}
