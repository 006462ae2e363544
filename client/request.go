package client

import (
	"encoding/base64"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/adamwoolhether/httpstream/sse"
)

// Verb is an HTTP method.
type Verb string

// Supported verbs.
const (
	GET     Verb = http.MethodGet
	POST    Verb = http.MethodPost
	PUT     Verb = http.MethodPut
	PATCH   Verb = http.MethodPatch
	DELETE  Verb = http.MethodDelete
	HEAD    Verb = http.MethodHead
	OPTIONS Verb = http.MethodOptions
)

const multipartFormData = "multipart/form-data"

// DataHandler streams a request body into w.
type DataHandler func(w io.Writer) error

// StreamConsumer receives the raw body of a 2xx response. The body is
// closed once it returns.
type StreamConsumer func(body io.Reader)

type payloadKind int

const (
	payloadNone payloadKind = iota
	payloadLiteral
	payloadHandler
)

type payload struct {
	kind    payloadKind
	data    string
	handler DataHandler
}

type modeKind int

const (
	modeBuffered modeKind = iota
	modeSSE
	modeStreaming
)

type responseMode struct {
	kind     modeKind
	onEvent  sse.Handler
	onStream StreamConsumer
}

type config struct {
	baseURL       *url.URL
	path          *string
	verb          Verb
	query         map[string]string
	headers       map[string][]string
	simpleHeaders func(map[string]string)
	multiHeaders  func(map[string][]string)
	interrupt     *atomic.Bool
	beforeConnect func(*http.Request)
	beforeFinish  func(*http.Response)
	debugger      func(string)
	payload       payload
	mode          responseMode
	files         map[string]string
	insecure      bool

	payloadConflict bool
	modeConflict    bool
}

// Request is a chainable builder describing a single HTTP exchange.
// It is not safe for concurrent use; use [Request.Clone] to hand a copy
// to another goroutine.
type Request struct {
	client   *Client
	boundary string
	cfg      config
	resolved *url.URL
}

func newRequest(c *Client) *Request {
	return &Request{
		client:   c,
		boundary: uuid.NewString(),
		cfg: config{
			query:   make(map[string]string),
			headers: make(map[string][]string),
			files:   make(map[string]string),
		},
	}
}

// Clone deep-copies the configuration. Hooks, the interrupt flag and the
// bound Client are shared with the copy.
func (r *Request) Clone() *Request {
	cpy := &Request{
		client:   r.client,
		boundary: r.boundary,
		cfg:      r.cfg,
	}

	if r.cfg.baseURL != nil {
		u := *r.cfg.baseURL
		cpy.cfg.baseURL = &u
	}
	if r.cfg.path != nil {
		p := *r.cfg.path
		cpy.cfg.path = &p
	}
	cpy.cfg.query = maps.Clone(r.cfg.query)
	cpy.cfg.files = maps.Clone(r.cfg.files)
	cpy.cfg.headers = make(map[string][]string, len(r.cfg.headers))
	for k, v := range r.cfg.headers {
		cpy.cfg.headers[k] = slices.Clone(v)
	}

	return cpy
}

// AgainstURL sets the base URL. The URL is copied.
func (r *Request) AgainstURL(u *url.URL) *Request {
	if u == nil {
		r.cfg.baseURL = nil
		return r
	}

	cpy := *u
	r.cfg.baseURL = &cpy
	return r
}

// WithURLPath sets a path appended to the base URL with exactly one
// slash at the seam.
func (r *Request) WithURLPath(path string) *Request {
	r.cfg.path = &path
	return r
}

// WithQueryParameter sets a query parameter, replacing any previous
// value for key.
func (r *Request) WithQueryParameter(key, value string) *Request {
	r.cfg.query[key] = value
	return r
}

// WithVerb sets the HTTP method.
func (r *Request) WithVerb(v Verb) *Request {
	r.cfg.verb = v
	return r
}

// WithContentType appends a Content-Type header. The multipart form type
// gets this request's boundary attached.
func (r *Request) WithContentType(contentType string) *Request {
	if contentType == multipartFormData {
		contentType += "; boundary=" + r.boundary
	}
	return r.AddHeader("Content-Type", contentType)
}

// WithAcceptTypes appends an Accept header per type.
func (r *Request) WithAcceptTypes(types ...string) *Request {
	for _, t := range types {
		r.AddHeader("Accept", t)
	}
	return r
}

// BeforeConnect sets a hook receiving the outgoing request before it is sent.
func (r *Request) BeforeConnect(fn func(*http.Request)) *Request {
	r.cfg.beforeConnect = fn
	return r
}

// BeforeFinish sets a hook receiving the response before its body is
// consumed.
func (r *Request) BeforeFinish(fn func(*http.Response)) *Request {
	r.cfg.beforeFinish = fn
	return r
}

// WithSimpleHeaders sets a mutator whose entries are appended to the
// headers at execution time.
func (r *Request) WithSimpleHeaders(fn func(map[string]string)) *Request {
	r.cfg.simpleHeaders = fn
	return r
}

// WithHeaders sets a mutator run against the accumulated headers at
// execution time.
func (r *Request) WithHeaders(fn func(map[string][]string)) *Request {
	r.cfg.multiHeaders = fn
	return r
}

// AddHeader appends value to the header key.
func (r *Request) AddHeader(key, value string) *Request {
	r.cfg.headers[key] = append(r.cfg.headers[key], value)
	return r
}

// WithBasicAuth appends a basic Authorization header.
func (r *Request) WithBasicAuth(user, password string) *Request {
	token := base64.StdEncoding.EncodeToString([]byte(user + ":" + password))
	return r.AddHeader("Authorization", "Basic "+token)
}

// WithData sets a literal request body.
func (r *Request) WithData(data string) *Request {
	r.setPayload(payload{kind: payloadLiteral, data: data})
	return r
}

// WithDataHandler sets a function streaming the request body.
func (r *Request) WithDataHandler(fn DataHandler) *Request {
	r.setPayload(payload{kind: payloadHandler, handler: fn})
	return r
}

// AddFileFormData attaches the file at path as the multipart field name.
// A later call for the same field replaces the path. Files are sent when
// no Content-Type is set or when it was set to "multipart/form-data"
// through [Request.WithContentType]; any other Content-Type keeps the
// data payload instead.
func (r *Request) AddFileFormData(field, path string) *Request {
	r.cfg.files[field] = path
	return r
}

// AsSSE consumes a 2xx response as a server-sent event stream, handing
// every event to fn.
func (r *Request) AsSSE(fn sse.Handler) *Request {
	r.setMode(responseMode{kind: modeSSE, onEvent: fn})
	return r
}

// AsStreaming hands the raw body of a 2xx response to fn.
func (r *Request) AsStreaming(fn StreamConsumer) *Request {
	r.setMode(responseMode{kind: modeStreaming, onStream: fn})
	return r
}

// UsingGzip asks the server for a gzip encoded response.
func (r *Request) UsingGzip() *Request {
	return r.AddHeader("Accept-Encoding", "gzip")
}

// IgnoringSelfSignedCert disables TLS certificate verification for
// https targets when ignore is true and restores it when false. Only use
// it against hosts you control.
func (r *Request) IgnoringSelfSignedCert(ignore bool) *Request {
	r.cfg.insecure = ignore
	return r
}

// WithDebugger sets a sink for human readable trace lines.
func (r *Request) WithDebugger(fn func(string)) *Request {
	r.cfg.debugger = fn
	return r
}

// WithInterrupt sets a flag that stops SSE consumption once raised.
func (r *Request) WithInterrupt(flag *atomic.Bool) *Request {
	r.cfg.interrupt = flag
	return r
}

// ResolvedURL returns the URL computed by the last successful
// [Request.Validate], or nil.
func (r *Request) ResolvedURL() *url.URL {
	return r.resolved
}

func (r *Request) setPayload(p payload) {
	if r.cfg.payload.kind != payloadNone && r.cfg.payload.kind != p.kind {
		r.cfg.payloadConflict = true
	}
	r.cfg.payload = p
}

func (r *Request) setMode(m responseMode) {
	if r.cfg.mode.kind != modeBuffered && r.cfg.mode.kind != m.kind {
		r.cfg.modeConflict = true
	}
	r.cfg.mode = m
}

func (r *Request) debug(msg string) {
	if r.cfg.debugger != nil {
		r.cfg.debugger(msg)
	}
}

func (r *Request) owner() *Client {
	if r.client != nil {
		return r.client
	}
	return Default()
}
