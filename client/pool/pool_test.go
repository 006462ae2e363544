package pool_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adamwoolhether/httpstream/client/pool"
)

func TestSubmit_ReturnsValue(t *testing.T) {
	p := pool.New(2)

	f := pool.Submit(t.Context(), p, func(ctx context.Context) (string, error) {
		return "done", nil
	})

	v, err := f.Get()
	if err != nil {
		t.Fatalf("exp nil err, got: %v", err)
	}
	if v != "done" {
		t.Errorf("exp %q; got: %q", "done", v)
	}
	if err := p.Wait(); err != nil {
		t.Errorf("exp nil wait err, got: %v", err)
	}
}

func TestSubmit_ConcurrencyLimit(t *testing.T) {
	const limit = 2
	p := pool.New(limit)

	var running, peak atomic.Int32
	futures := make([]*pool.Future[int], 0, 6)
	for i := range 6 {
		futures = append(futures, pool.Submit(t.Context(), p, func(ctx context.Context) (int, error) {
			n := running.Add(1)
			for {
				cur := peak.Load()
				if n <= cur || peak.CompareAndSwap(cur, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			running.Add(-1)
			return i, nil
		}))
	}

	for i, f := range futures {
		v, err := f.Get()
		if err != nil {
			t.Fatalf("job %d: exp nil err, got: %v", i, err)
		}
		if v != i {
			t.Errorf("job %d: exp value %d; got: %d", i, i, v)
		}
	}

	if got := peak.Load(); got > limit {
		t.Errorf("exp at most %d concurrent jobs; got %d", limit, got)
	}
}

func TestPool_WaitJoinsErrors(t *testing.T) {
	p := pool.New(0)
	errA := errors.New("a failed")
	errB := errors.New("b failed")

	pool.Submit(t.Context(), p, func(context.Context) (struct{}, error) { return struct{}{}, errA })
	pool.Submit(t.Context(), p, func(context.Context) (struct{}, error) { return struct{}{}, errB })
	pool.Submit(t.Context(), p, func(context.Context) (struct{}, error) { return struct{}{}, nil })

	err := p.Wait()
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Errorf("exp both errors joined; got: %v", err)
	}
}

func TestPool_Shutdown(t *testing.T) {
	p := pool.New(1)
	p.Shutdown()

	f := pool.Submit(t.Context(), p, func(context.Context) (int, error) {
		t.Error("job must not run after shutdown")
		return 0, nil
	})

	if err := f.Err(); !errors.Is(err, pool.ErrPoolShutdown) {
		t.Errorf("exp err %v; got: %v", pool.ErrPoolShutdown, err)
	}
}

func TestFuture_CancelWhileQueued(t *testing.T) {
	p := pool.New(1)
	started := make(chan struct{})
	release := make(chan struct{})

	blocker := pool.Submit(t.Context(), p, func(context.Context) (int, error) {
		close(started)
		<-release
		return 1, nil
	})
	<-started

	queued := pool.Submit(t.Context(), p, func(context.Context) (int, error) {
		return 2, nil
	})
	queued.Cancel()

	if err := queued.Err(); !errors.Is(err, context.Canceled) {
		t.Errorf("exp err %v; got: %v", context.Canceled, err)
	}

	close(release)
	if err := blocker.Err(); err != nil {
		t.Errorf("exp nil err for blocker, got: %v", err)
	}
}

func TestSubmit_ContextLifetime(t *testing.T) {
	testCases := map[string]struct {
		err       error
		expCancel bool
	}{
		"success": {},
		"failure": {err: errors.New("boom"), expCancel: true},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			var jobCtx context.Context
			f := pool.Submit(t.Context(), pool.New(1), func(ctx context.Context) (int, error) {
				jobCtx = ctx
				return 0, tc.err
			})
			f.Get()

			if got := jobCtx.Err() != nil; got != tc.expCancel {
				t.Fatalf("exp cancelled %v; got: %v", tc.expCancel, got)
			}

			f.Cancel()
			if jobCtx.Err() == nil {
				t.Error("exp Cancel to release the job context")
			}
		})
	}
}

func TestCompleted(t *testing.T) {
	boom := errors.New("boom")
	f := pool.Completed(0, boom)

	select {
	case <-f.Done():
	default:
		t.Fatal("exp completed future to be done")
	}

	if _, err := f.Get(); !errors.Is(err, boom) {
		t.Errorf("exp err %v; got: %v", boom, err)
	}
	f.Cancel()
}

func TestDefault(t *testing.T) {
	if pool.Default() != pool.Default() {
		t.Error("exp the same shared pool")
	}
}

func ExampleSubmit() {
	p := pool.New(2)

	f := pool.Submit(context.Background(), p, func(ctx context.Context) (int, error) {
		return 40 + 2, nil
	})

	v, err := f.Get()
	fmt.Println(v, err)
	// Output: 42 <nil>
}
