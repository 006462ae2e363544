package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/adamwoolhether/httpstream/client"
)

// Predicate decides whether a URL takes part in the crawl.
type Predicate func(*url.URL) bool

// Accumulator holds every recorded response keyed by absolute URL.
type Accumulator map[string]*client.Response

// Spider crawls pages with clones of a base request.
type Spider struct {
	base    *client.Request
	extract Extractor
	log     *slog.Logger
}

// New creates a Spider. Every fetch clones base, so headers, hooks and
// the bound Client carry over.
func New(base *client.Request, optFns ...Option) *Spider {
	opts := options{
		extract: AnchorExtractor,
		logger:  slog.Default(),
	}
	for _, opt := range optFns {
		opt(&opts)
	}

	if base == nil {
		base = client.NewRequest()
	}

	return &Spider{
		base:    base,
		extract: opts.extract,
		log:     opts.logger,
	}
}

// Crawl visits start and, recursively, the links of every followed page.
// URLs already in acc are skipped. save takes precedence over follow.
// Failed fetches go to onError and are not recorded.
func (s *Spider) Crawl(ctx context.Context, start *url.URL, follow, save Predicate, acc Accumulator, onError func(error)) {
	if onError == nil {
		onError = func(error) {}
	}

	key := start.String()
	if _, ok := acc[key]; ok {
		return
	}

	switch {
	case save != nil && save(start):
		if resp := s.fetch(ctx, start, onError); resp != nil {
			acc[key] = resp
		}

	case follow != nil && follow(start):
		resp := s.fetch(ctx, start, onError)
		if resp == nil {
			return
		}
		acc[key] = resp

		links, err := s.extract(resp)
		if err != nil {
			onError(fmt.Errorf("extracting links from %s: %w", key, err))
			return
		}

		for _, link := range links {
			if ctx.Err() != nil {
				return
			}
			s.Crawl(ctx, link, follow, save, acc, onError)
		}
	}
}

func (s *Spider) fetch(ctx context.Context, u *url.URL, onError func(error)) *client.Response {
	s.log.Debug("crawl fetch", "url", u.String())

	return s.base.Clone().
		AgainstURL(u).
		WithVerb(client.GET).
		Execute(ctx, onError)
}
