// Package sse parses Server-Sent-Events streams.
//
// A stream is a sequence of lines. Lines of the form "field:value" build up
// the record in progress, lines starting with ":" are comments, and a blank
// line dispatches the record. Only the id, event and data fields are kept;
// a repeated field replaces the earlier value and a field with no value is
// ignored.
// A record without data is dropped, as is a record still in progress when
// the stream ends.
//
// # Parsing a Stream
//
// [Parse] blocks until the stream ends, the context is cancelled or the
// interrupt flag is raised:
//
//	var stop atomic.Bool
//	err := sse.Parse(ctx, resp.Body, func(ev sse.Event) {
//		fmt.Println(ev.DataOr(""))
//	}, sse.WithInterrupt(&stop))
//
// For callers that read lines themselves, [Parser] exposes the state
// machine one line at a time.
package sse
