// Package pool runs request executions on a bounded set of goroutines
// and hands back a [Future] for each submitted job.
//
// # Usage
//
//	p := pool.New(4)
//	f := pool.Submit(ctx, p, func(ctx context.Context) (int, error) {
//		return 42, nil
//	})
//	v, err := f.Get()
//
// [Default] returns a process-wide pool sized to GOMAXPROCS, used when
// callers do not bring their own.
package pool
