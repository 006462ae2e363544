// Package throttle provides an [http.RoundTripper] that rate-limits
// outbound requests with token buckets from [golang.org/x/time/rate].
//
// # Usage
//
// Wrap an existing transport with [NewRoundTripper]:
//
//	rt, err := throttle.NewRoundTripper(
//		throttle.Config{RPS: 2, Burst: 1, PerHost: true},
//		func() *slog.Logger { return slog.Default() },
//		http.DefaultTransport,
//	)
//	httpClient := &http.Client{Transport: rt}
//
// With PerHost set every target host gets its own bucket, which keeps a
// crawler polite towards each site without slowing down unrelated ones.
// Otherwise one bucket is shared by all requests.
//
// When the rate limit is exceeded, outbound requests block until a token
// becomes available or the request context ends.
package throttle
