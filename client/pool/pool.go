package pool

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrPoolShutdown is returned by jobs submitted after [Pool.Shutdown].
var ErrPoolShutdown = errors.New("pool is shut down")

// WorkFunc is the signature for pooled work.
type WorkFunc[T any] func(ctx context.Context) (T, error)

// Pool bounds the number of jobs running at once.
type Pool struct {
	wg       sync.WaitGroup
	mu       sync.Mutex
	sem      *semaphore.Weighted
	shutdown atomic.Bool
	errs     []error
}

// New creates a Pool running at most maxConcurrent jobs at a time.
// If maxConcurrent <= 0, concurrency is unlimited.
func New(maxConcurrent int) *Pool {
	p := &Pool{}
	if maxConcurrent > 0 {
		p.sem = semaphore.NewWeighted(int64(maxConcurrent))
	}
	return p
}

var defaultPool = sync.OnceValue(func() *Pool {
	return New(runtime.GOMAXPROCS(0))
})

// Default returns the shared process-wide pool.
func Default() *Pool {
	return defaultPool()
}

// Wait blocks until every submitted job completes and returns all job
// errors joined via errors.Join.
func (p *Pool) Wait() error {
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()

	return errors.Join(p.errs...)
}

// Shutdown prevents queued and future jobs from executing.
func (p *Pool) Shutdown() {
	p.shutdown.Store(true)
}

// Submit launches fn in a new goroutine managed by p once a slot is free
// and returns a Future for its result. The job context is cancelled when
// fn fails or the job never runs. After a successful return it stays live
// so results bound to it, such as open response bodies, remain readable;
// [Future.Cancel] releases it.
func Submit[T any](ctx context.Context, p *Pool, fn WorkFunc[T]) *Future[T] {
	ctx, cancel := context.WithCancel(ctx)
	f := &Future[T]{
		done:   make(chan struct{}),
		cancel: cancel,
	}

	p.wg.Add(1)
	go func() {
		defer func() {
			if f.err != nil {
				cancel()
			}
			close(f.done)
			p.wg.Done()
		}()

		if p.sem != nil {
			if err := p.sem.Acquire(ctx, 1); err != nil {
				f.err = err
				p.recordErr(err)
				return
			}
			defer p.sem.Release(1)
		}

		if p.shutdown.Load() {
			f.err = ErrPoolShutdown
			p.recordErr(f.err)
			return
		}

		f.val, f.err = fn(ctx)
		if f.err != nil {
			p.recordErr(f.err)
		}
	}()

	return f
}

func (p *Pool) recordErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs = append(p.errs, err)
}
