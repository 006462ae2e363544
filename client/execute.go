package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/httpstream/client/pool"
	"github.com/adamwoolhether/httpstream/sse"
)

// Do validates and executes the request. Configuration problems are
// returned as [ValidationErrors] without any connection being made.
// A non-nil Response may come with a non-nil error when the exchange
// completed but consuming an SSE stream failed.
func (r *Request) Do(ctx context.Context) (*Response, error) {
	resolved, verrs := r.resolve()
	if len(verrs) > 0 {
		return nil, verrs
	}

	var errs []error
	resp := r.execute(ctx, resolved, func(err error) { errs = append(errs, err) })

	joined := errors.Join(errs...)
	if resp == nil {
		if joined == nil {
			return nil, ErrNoResponse
		}
		return nil, joined
	}

	return resp, joined
}

// Execute is Do in callback form: every error is handed to onError and a
// nil Response signals failure.
func (r *Request) Execute(ctx context.Context, onError func(error)) *Response {
	if onError == nil {
		onError = func(error) {}
	}

	resolved, verrs := r.resolve()
	if len(verrs) > 0 {
		for _, err := range verrs {
			onError(err)
		}
		return nil
	}

	return r.execute(ctx, resolved, onError)
}

// ExecuteAsync runs the request on the shared [pool.Default] pool, which
// has GOMAXPROCS slots. A job holds its slot until the response mode is
// done, so long lived SSE or streaming requests belong on a dedicated
// pool through [Request.ExecuteAsyncOn].
func (r *Request) ExecuteAsync(ctx context.Context) *pool.Future[*Response] {
	return r.ExecuteAsyncOn(ctx, pool.Default())
}

// ExecuteAsyncOn validates the request synchronously and then runs a
// snapshot of it on p. Validation failures complete the Future at once.
// Any error reported during the run fails the Future. A buffered body
// stays readable after completion; call [pool.Future.Cancel] once the
// Response is no longer needed.
func (r *Request) ExecuteAsyncOn(ctx context.Context, p *pool.Pool) *pool.Future[*Response] {
	if verrs := r.Validate(); len(verrs) > 0 {
		return pool.Completed[*Response](nil, verrs)
	}

	snapshot := r.Clone()
	return pool.Submit(ctx, p, func(ctx context.Context) (*Response, error) {
		resp, err := snapshot.Do(ctx)
		if err != nil {
			if resp != nil {
				resp.Close()
			}
			return nil, err
		}
		return resp, nil
	})
}

func (r *Request) execute(ctx context.Context, resolved Resolved, onError func(error)) *Response {
	c := r.owner()
	reqID := uuid.NewString()
	target := resolved.URL.String()
	log := c.logger.With("request_id", reqID, "method", resolved.Verb, "url", target)

	ctx, span := c.startSpan(ctx, resolved, reqID)
	defer span.End()

	fail := func(err error) *Response {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.debug("Got exception: " + err.Error())
		log.Debug("request failed", "error", err)
		onError(err)
		return nil
	}

	r.debug("Final url is: " + target)

	if r.cfg.insecure && resolved.URL.Scheme == "https" {
		r.debug("Ignoring self signed certificates")
		ctx = withInsecure(ctx)
	}

	body, err := r.staticBody(resolved.Header)
	if err != nil {
		return fail(err)
	}

	req, err := http.NewRequestWithContext(ctx, string(resolved.Verb), target, body)
	if err != nil {
		return fail(fmt.Errorf("instantiating request: %w", err))
	}
	req.Header = resolved.Header
	if body == nil && r.cfg.payload.kind == payloadHandler {
		req.Body = r.streamedBody()
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	if r.cfg.beforeConnect != nil {
		r.cfg.beforeConnect(req)
	}

	log.Debug("request started")
	start := time.Now()

	resp, err := c.c.Do(req)
	if err != nil {
		return fail(fmt.Errorf("exec http do: %w", err))
	}

	if r.cfg.beforeFinish != nil {
		r.cfg.beforeFinish(resp)
	}

	r.debug(fmt.Sprintf("Response code is %d", resp.StatusCode))
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	log.Debug("request completed", "status", resp.StatusCode, "since", time.Since(start).String())

	out := &Response{
		SourceURL:  resolved.URL,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
	}

	switch {
	case out.IsValidResponse():
		if err := r.consume(ctx, resp.Body, out, log); err != nil {
			span.RecordError(err)
			onError(err)
		}
	case resp.StatusCode >= http.StatusBadRequest:
		out.errBody = resp.Body
	default:
		out.body = resp.Body
	}

	return out
}

// staticBody returns the multipart form or literal payload, in that order
// of priority. Files are sent only when the Content-Type is unset or is the
// builder's own multipart value; an unset Content-Type is filled in.
func (r *Request) staticBody(header http.Header) (io.Reader, error) {
	switch {
	case len(r.cfg.files) > 0 && r.sendsMultipart(header):
		buf, contentType, err := r.multipartBody()
		if err != nil {
			return nil, err
		}
		if header.Get("Content-Type") == "" {
			header.Set("Content-Type", contentType)
		}
		return buf, nil
	case r.cfg.payload.kind == payloadLiteral:
		return strings.NewReader(r.cfg.payload.data), nil
	default:
		return nil, nil
	}
}

func (r *Request) sendsMultipart(header http.Header) bool {
	ct := header.Get("Content-Type")
	return ct == "" || ct == multipartFormData+"; boundary="+r.boundary
}

// streamedBody pipes the data handler's output into the request body.
// The transport closing the body unblocks a handler that is still writing.
func (r *Request) streamedBody() io.ReadCloser {
	pr, pw := io.Pipe()
	handler := r.cfg.payload.handler

	go func() {
		if handler == nil {
			pw.Close()
			return
		}
		pw.CloseWithError(handler(pw))
	}()

	return pr
}

// consume dispatches a 2xx body to the configured response mode. SSE and
// streaming bodies are closed once consumed; buffered bodies are kept on out.
func (r *Request) consume(ctx context.Context, body io.ReadCloser, out *Response, log *slog.Logger) error {
	switch r.cfg.mode.kind {
	case modeSSE:
		defer closeBody(body, log)
		r.debug("Consuming event stream")

		lineErr := func(err error) {
			r.debug("Skipping event line: " + err.Error())
			log.Warn("skipping event line", "error", err)
		}

		err := sse.Parse(ctx, body, r.cfg.mode.onEvent,
			sse.WithInterrupt(r.cfg.interrupt),
			sse.WithLineErrorHandler(lineErr),
		)
		if err != nil {
			return fmt.Errorf("consuming event stream: %w", err)
		}

	case modeStreaming:
		defer closeBody(body, log)
		if r.cfg.mode.onStream != nil {
			r.cfg.mode.onStream(body)
		}

	default:
		out.body = body
	}

	return nil
}

func closeBody(body io.Closer, log *slog.Logger) {
	if err := body.Close(); err != nil {
		log.Error("failed to close response body", "error", err)
	}
}

// startSpan opens the execution span and tags it with the request details.
func (c *Client) startSpan(ctx context.Context, resolved Resolved, reqID string) (context.Context, trace.Span) {
	ctx, span := c.tracer.Start(ctx, "httpstream.execute", trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("http.request.method", string(resolved.Verb)),
		attribute.String("url.full", resolved.URL.String()),
		attribute.String("request.id", reqID),
	)

	return ctx, span
}
