// Package crawl walks links depth-first from a start URL using a base
// [client.Request] as the template for every fetch.
//
// Two predicates steer the walk. A URL accepted by save is fetched and
// recorded without being parsed. Otherwise a URL accepted by follow is
// fetched, recorded and its links are crawled in turn. Every recorded URL
// is skipped when seen again, so cycles end.
//
//	acc := crawl.Accumulator{}
//	crawl.New(base).Crawl(ctx, start, sameHost, isPDF, acc, onError)
//
// Responses kept for saved URLs still hold their body; close them when
// done.
package crawl
