// Package client provides the core implementation of the configurable HTTP
// client built on [net/http].
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := client.Build(
//		client.WithTimeout(10 * time.Second),
//		client.WithUserAgent("myapp/1.0"),
//		client.WithHostThrottle(5, 1),
//	)
//
// # Describing a Request
//
// [Client.NewRequest] starts a chainable builder. Nothing is sent until the
// request is executed:
//
//	req := c.NewRequest().
//		AgainstURL(base).
//		WithURLPath("/v1/items").
//		WithQueryParameter("page", "2").
//		WithVerb(client.GET).
//		UsingGzip()
//
// [Request.Validate] reports every configuration problem at once.
//
// # Executing
//
// [Request.Do] returns the [Response] or an error. [Request.Execute] is
// the callback form, handing errors to a func and returning nil on
// failure:
//
//	resp, err := req.Do(ctx)
//	if err != nil { ... }
//	defer resp.Close()
//	text, err := resp.BodyText()
//
// # Response Modes
//
// By default a 2xx body is kept on the [Response] and decoded on demand.
// [Request.AsSSE] parses it as a server-sent event stream instead, and
// [Request.AsStreaming] hands the raw body to a consumer. Both run on the
// calling goroutine and close the body when done.
//
// # Async Execution
//
// [Request.ExecuteAsync] runs a snapshot of the request on the shared
// worker pool and returns a [pool.Future]:
//
//	f := req.ExecuteAsync(ctx)
//	// ... do other work ...
//	resp, err := f.Get()
//
// Use [Request.ExecuteAsyncOn] with [pool.New] to bound concurrency per
// workload.
package client
