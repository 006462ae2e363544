package pool

import "context"

// Future is an in-flight or completed job.
type Future[T any] struct {
	done   chan struct{}
	val    T
	err    error
	cancel context.CancelFunc
}

// Completed returns a Future that is already resolved with val and err.
func Completed[T any](val T, err error) *Future[T] {
	done := make(chan struct{})
	close(done)

	return &Future[T]{
		done:   done,
		val:    val,
		err:    err,
		cancel: func() {},
	}
}

// Done returns a channel that is closed when the job completes.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Get blocks until the job completes and returns its result.
func (f *Future[T]) Get() (T, error) {
	<-f.done
	return f.val, f.err
}

// Err blocks until the job completes and returns its error.
func (f *Future[T]) Err() error {
	<-f.done
	return f.err
}

// Cancel cancels the job's context.
func (f *Future[T]) Cancel() {
	f.cancel()
}
