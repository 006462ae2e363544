package throttle

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

var (
	ErrMustNotBeZero = errors.New("must be greater than zero")
	ErrWaitingFailed = errors.New("limiter waiting failed")
	ErrContextEnded  = errors.New("throttle context ended")
)

// Config defines the throttler's requests per second and burst size.
// PerHost keys the buckets on the request host.
type Config struct {
	RPS     int
	Burst   int
	PerHost bool
}

func (c Config) validate() error {
	if c.RPS <= 0 || c.Burst <= 0 {
		return fmt.Errorf("rps[%d] and burst[%d] %w", c.RPS, c.Burst, ErrMustNotBeZero)
	}
	return nil
}

// throttle is an http.RoundTripper, using the time/rate token
// bucket limiter to restrict outbound calls.
type throttle struct {
	cfg   Config
	next  http.RoundTripper
	logFn func() *slog.Logger

	mu       sync.Mutex
	shared   *rate.Limiter
	limiters map[string]*rate.Limiter
}

// NewRoundTripper returns an http.RoundTripper that throttles outbound
// requests. logFn lazily resolves the logger at request time, making option
// ordering irrelevant. A nil-returning logFn disables wait logging.
func NewRoundTripper(cfg Config, logFn func() *slog.Logger, next http.RoundTripper) (http.RoundTripper, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if next == nil {
		next = http.DefaultTransport
	}
	if logFn == nil {
		logFn = func() *slog.Logger { return nil }
	}

	t := &throttle{
		cfg:      cfg,
		next:     next,
		logFn:    logFn,
		limiters: make(map[string]*rate.Limiter),
	}
	if !cfg.PerHost {
		t.shared = rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)
	}

	return t, nil
}

func (t *throttle) limiterFor(host string) *rate.Limiter {
	if t.shared != nil {
		return t.shared
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(t.cfg.RPS), t.cfg.Burst)
		t.limiters[host] = l
	}

	return l
}

func (t *throttle) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w early: %w", ErrContextEnded, err)
	}

	limiter := t.limiterFor(r.URL.Host)

	var waited time.Duration
	logger := t.logFn()
	if logger != nil && limiter.Tokens() < 1 {
		logger.Info("throttle tokens exhausted", "rate", t.cfg.RPS, "burst", t.cfg.Burst, "host", r.URL.Host)

		defer func() {
			logger.Info("throttle wait complete", "waited", waited.String(), "host", r.URL.Host)
		}()
	}

	start := time.Now()

	err := limiter.Wait(ctx)
	waited = time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWaitingFailed, err)
	}

	if err := ctx.Err(); err != nil { // Check context hasn't expired again.
		return nil, fmt.Errorf("%w post-wait: %w", ErrContextEnded, err)
	}

	return t.next.RoundTrip(r)
}
