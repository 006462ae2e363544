package crawl

import "log/slog"

// Option is a functional option for [New].
type Option func(*options)

type options struct {
	extract Extractor
	logger  *slog.Logger
}

// WithExtractor replaces the default [AnchorExtractor].
func WithExtractor(fn Extractor) Option {
	return func(o *options) {
		o.extract = fn
	}
}

// WithLogger injects a custom [slog.Logger] into the Spider.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
