package client

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"
)

// maxErrBodySize caps the amount of decoded text carried by the
// error built in [Response.Err].
const maxErrBodySize = 4 << 10 // 4KB

// NoData is the text of a stream that holds no lines.
const NoData = "No data"

var lineSeparator = func() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}()

type textCache struct {
	once sync.Once
	text string
	err  error
}

// Response is the result of an executed request. For 2xx buffered
// requests the payload is the body stream; for other statuses of 400 and
// above it is the error stream. Each stream is read at most once and its
// decoded text cached.
type Response struct {
	SourceURL  *url.URL
	StatusCode int
	Header     http.Header

	body    io.ReadCloser
	errBody io.ReadCloser

	bodyText textCache
	errText  textCache
}

// NewResponse assembles a Response around already opened streams. Either
// stream may be nil.
func NewResponse(source *url.URL, statusCode int, header http.Header, body, errBody io.ReadCloser) *Response {
	return &Response{
		SourceURL:  source,
		StatusCode: statusCode,
		Header:     header,
		body:       body,
		errBody:    errBody,
	}
}

// HasBody reports whether the response carries a body stream.
func (r *Response) HasBody() bool { return r.body != nil }

// HasErrorBody reports whether the response carries an error stream.
func (r *Response) HasErrorBody() bool { return r.errBody != nil }

// IsValidResponse reports a 2xx status.
func (r *Response) IsValidResponse() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsGzipEncoded reports whether gzip is one of the Content-Encoding values.
func (r *Response) IsGzipEncoded() bool {
	return slices.Contains(r.Header.Values("Content-Encoding"), "gzip")
}

// BodyText decodes the body stream. See [Response.ErrorText].
func (r *Response) BodyText() (string, error) {
	return r.text(r.body, &r.bodyText)
}

// ErrorText decodes the error stream: gzip is undone when the response is
// gzip encoded, then the UTF-8 lines are joined with the platform line
// separator. An absent stream yields "", an empty one [NoData]. The
// result is computed once; on failure the text is "" and the error is
// returned on every call.
func (r *Response) ErrorText() (string, error) {
	return r.text(r.errBody, &r.errText)
}

// BodyString is BodyText without the error.
func (r *Response) BodyString() string {
	s, _ := r.BodyText()
	return s
}

// ErrorString is ErrorText without the error.
func (r *Response) ErrorString() string {
	s, _ := r.ErrorText()
	return s
}

// Err returns an [*UnexpectedStatusError] for responses outside the 2xx
// range and nil otherwise.
func (r *Response) Err() error {
	if r.IsValidResponse() {
		return nil
	}

	text := r.ErrorString()
	if !r.HasErrorBody() {
		text = r.BodyString()
	}
	if len(text) > maxErrBodySize {
		text = text[:maxErrBodySize]
	}

	err := ErrUnexpectedStatusCode
	if r.StatusCode == http.StatusUnauthorized || r.StatusCode == http.StatusForbidden {
		err = errors.Join(ErrUnexpectedStatusCode, ErrAuthFailure)
	}

	return &UnexpectedStatusError{
		StatusCode: r.StatusCode,
		Body:       text,
		Err:        err,
	}
}

// Close releases streams that were never read. Their text becomes
// unavailable.
func (r *Response) Close() error {
	return errors.Join(
		closeUnread(r.body, &r.bodyText),
		closeUnread(r.errBody, &r.errText),
	)
}

func (r *Response) text(stream io.ReadCloser, cache *textCache) (string, error) {
	if stream == nil {
		return "", nil
	}

	cache.once.Do(func() {
		cache.text, cache.err = decodeText(stream, r.IsGzipEncoded())
		if cache.err != nil {
			cache.text = ""
		}
	})

	return cache.text, cache.err
}

func closeUnread(stream io.ReadCloser, cache *textCache) error {
	if stream == nil {
		return nil
	}

	var err error
	cache.once.Do(func() {
		cache.err = ErrStreamClosed
		err = stream.Close()
	})

	return err
}

func decodeText(stream io.ReadCloser, gzipped bool) (string, error) {
	defer stream.Close()

	var src io.Reader = stream
	if gzipped {
		zr, err := gzip.NewReader(stream)
		if err != nil {
			return "", fmt.Errorf("%w: gzip: %w", ErrDecode, err)
		}
		defer zr.Close()
		src = zr
	}

	b, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: %w", ErrDecode, ErrInvalidUTF8)
	}

	return joinLines(string(b)), nil
}

// joinLines splits on LF, CRLF or CR like a line reader and rejoins with
// the platform separator. A trailing terminator does not start a line.
func joinLines(s string) string {
	if s == "" {
		return NoData
	}

	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")

	return strings.Join(strings.Split(s, "\n"), lineSeparator)
}
