package sse

import "sync/atomic"

// Option configures [Parse].
type Option func(*options)

type options struct {
	interrupt *atomic.Bool
	onLineErr func(error)
}

// WithInterrupt sets a shared flag that stops parsing once it reads true.
// The flag is checked before every line, so a read that is already blocked
// is not interrupted by it; cancel the context for that.
func WithInterrupt(flag *atomic.Bool) Option {
	return func(opts *options) {
		opts.interrupt = flag
	}
}

// WithLineErrorHandler receives per-line decode failures. Those lines are
// skipped and parsing continues.
func WithLineErrorHandler(fn func(error)) Option {
	return func(opts *options) {
		opts.onLineErr = fn
	}
}
