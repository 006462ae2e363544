package client_test

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"

	"github.com/adamwoolhether/httpstream/client"
)

// onceStream fails every read after it was closed or fully drained.
type onceStream struct {
	r      io.Reader
	done   bool
	reads  int
	closes int
}

func newOnceStream(s string) *onceStream {
	return &onceStream{r: strings.NewReader(s)}
}

func (o *onceStream) Read(p []byte) (int, error) {
	o.reads++
	if o.done {
		return 0, errors.New("stream read twice")
	}

	n, err := o.r.Read(p)
	if errors.Is(err, io.EOF) {
		o.done = true
	}
	return n, err
}

func (o *onceStream) Close() error {
	o.closes++
	o.done = true
	return nil
}

func joined(lines ...string) string {
	sep := "\n"
	if runtime.GOOS == "windows" {
		sep = "\r\n"
	}
	return strings.Join(lines, sep)
}

func TestResponse_TextIsCached(t *testing.T) {
	stream := newOnceStream("first\nsecond\n")
	resp := client.NewResponse(nil, http.StatusOK, http.Header{}, stream, nil)

	first, err := resp.BodyText()
	if err != nil {
		t.Fatalf("exp nil err, got: %v", err)
	}
	reads := stream.reads

	second, err := resp.BodyText()
	if err != nil {
		t.Fatalf("exp nil err on second call, got: %v", err)
	}

	if first != second || first != joined("first", "second") {
		t.Errorf("exp %q twice; got: %q and %q", joined("first", "second"), first, second)
	}
	if stream.reads != reads {
		t.Errorf("exp no second read; reads went from %d to %d", reads, stream.reads)
	}
	if stream.closes != 1 {
		t.Errorf("exp the stream closed once; got %d", stream.closes)
	}
}

func TestResponse_Text(t *testing.T) {
	testCases := map[string]struct {
		body string
		exp  string
	}{
		"empty":           {body: "", exp: client.NoData},
		"singleLine":      {body: "hello", exp: "hello"},
		"trailingNewline": {body: "hello\n", exp: "hello"},
		"crlf":            {body: "a\r\nb\r\n", exp: joined("a", "b")},
		"blankLines":      {body: "a\n\nb", exp: joined("a", "", "b")},
		"multiByte":       {body: "héllo\nwörld", exp: joined("héllo", "wörld")},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			resp := client.NewResponse(nil, http.StatusOK, nil, io.NopCloser(strings.NewReader(tc.body)), nil)

			got, err := resp.BodyText()
			if err != nil {
				t.Fatalf("exp nil err, got: %v", err)
			}
			if got != tc.exp {
				t.Errorf("exp %q; got: %q", tc.exp, got)
			}
		})
	}
}

func TestResponse_AbsentStreams(t *testing.T) {
	resp := client.NewResponse(nil, http.StatusOK, nil, nil, nil)

	if got, err := resp.BodyText(); got != "" || err != nil {
		t.Errorf("exp empty body text and nil err; got: %q, %v", got, err)
	}
	if got, err := resp.ErrorText(); got != "" || err != nil {
		t.Errorf("exp empty error text and nil err; got: %q, %v", got, err)
	}
	if err := resp.Close(); err != nil {
		t.Errorf("exp nil close err, got: %v", err)
	}
}

func gzipped(t *testing.T, s string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(s)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	return buf.Bytes()
}

func TestResponse_Gzip(t *testing.T) {
	testCases := map[string]struct {
		encoding []string
		body     []byte
		expGzip  bool
		exp      string
		expErr   error
	}{
		"gzip": {
			encoding: []string{"gzip"},
			body:     gzipped(t, "compressed\ntext"),
			expGzip:  true,
			exp:      joined("compressed", "text"),
		},
		"gzipAmongOthers": {
			encoding: []string{"br", "gzip"},
			body:     gzipped(t, "x"),
			expGzip:  true,
			exp:      "x",
		},
		"notExactValue": {
			encoding: []string{"GZIP"},
			body:     []byte("plain"),
			exp:      "plain",
		},
		"corrupt": {
			encoding: []string{"gzip"},
			body:     []byte("not gzip"),
			expGzip:  true,
			expErr:   client.ErrDecode,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			header := http.Header{"Content-Encoding": tc.encoding}
			body := io.NopCloser(bytes.NewReader(tc.body))
			resp := client.NewResponse(nil, http.StatusBadRequest, header, nil, body)

			if got := resp.IsGzipEncoded(); got != tc.expGzip {
				t.Errorf("exp gzip %t; got: %t", tc.expGzip, got)
			}

			got, err := resp.ErrorText()
			if !errors.Is(err, tc.expErr) {
				t.Errorf("exp err %v; got: %v", tc.expErr, err)
			}
			if got != tc.exp {
				t.Errorf("exp %q; got: %q", tc.exp, got)
			}
		})
	}
}

func TestResponse_InvalidUTF8(t *testing.T) {
	resp := client.NewResponse(nil, http.StatusOK, nil, io.NopCloser(bytes.NewReader([]byte{0xff, 0xfe})), nil)

	got, err := resp.BodyText()
	if !errors.Is(err, client.ErrInvalidUTF8) {
		t.Errorf("exp err %v; got: %v", client.ErrInvalidUTF8, err)
	}
	if got != "" {
		t.Errorf("exp empty text; got: %q", got)
	}
	if resp.BodyString() != "" {
		t.Error("exp BodyString to degrade to empty")
	}
}

func TestResponse_GzipOverHTTP(t *testing.T) {
	payload := gzipped(t, "over the wire")
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept-Encoding") != "gzip" {
			w.WriteHeader(http.StatusNotAcceptable)
			return
		}
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(payload)
	}))
	defer ts.Close()

	resp, err := client.NewRequest().AgainstURL(mustParse(t, ts.URL)).WithVerb(client.GET).UsingGzip().Do(t.Context())
	if err != nil {
		t.Fatalf("exp nil err, got: %v", err)
	}
	defer resp.Close()

	if !resp.IsGzipEncoded() {
		t.Error("exp a gzip encoded response")
	}
	if got := resp.BodyString(); got != "over the wire" {
		t.Errorf("exp %q; got: %q", "over the wire", got)
	}
}

func TestResponse_IsValidResponse(t *testing.T) {
	testCases := map[string]struct {
		code int
		exp  bool
	}{
		"199": {code: 199, exp: false},
		"200": {code: 200, exp: true},
		"299": {code: 299, exp: true},
		"300": {code: 300, exp: false},
		"404": {code: 404, exp: false},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			resp := client.NewResponse(nil, tc.code, nil, nil, nil)
			if got := resp.IsValidResponse(); got != tc.exp {
				t.Errorf("exp %t; got: %t", tc.exp, got)
			}
		})
	}
}

func TestResponse_Err(t *testing.T) {
	testCases := map[string]struct {
		code     int
		body     string
		expErrs  []error
		expNil   bool
		expInMsg string
	}{
		"ok":           {code: http.StatusOK, expNil: true},
		"serverError":  {code: http.StatusInternalServerError, body: "broken", expErrs: []error{client.ErrUnexpectedStatusCode}, expInMsg: "broken"},
		"unauthorized": {code: http.StatusUnauthorized, body: "who?", expErrs: []error{client.ErrUnexpectedStatusCode, client.ErrAuthFailure}},
		"forbidden":    {code: http.StatusForbidden, expErrs: []error{client.ErrAuthFailure}},
		"cappedBody":   {code: http.StatusBadRequest, body: strings.Repeat("x", 10_000), expErrs: []error{client.ErrUnexpectedStatusCode}},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			resp := client.NewResponse(nil, tc.code, nil, nil, io.NopCloser(strings.NewReader(tc.body)))

			err := resp.Err()
			if tc.expNil {
				if err != nil {
					t.Errorf("exp nil err, got: %v", err)
				}
				return
			}

			var statusErr *client.UnexpectedStatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("exp UnexpectedStatusError; got: %v", err)
			}
			if statusErr.StatusCode != tc.code {
				t.Errorf("exp status %d; got: %d", tc.code, statusErr.StatusCode)
			}
			if len(statusErr.Body) > 4<<10 {
				t.Errorf("exp body capped at 4KB; got %d bytes", len(statusErr.Body))
			}
			for _, exp := range tc.expErrs {
				if !errors.Is(err, exp) {
					t.Errorf("exp err %v in %v", exp, err)
				}
			}
			if !strings.Contains(err.Error(), tc.expInMsg) {
				t.Errorf("exp %q in %q", tc.expInMsg, err.Error())
			}
		})
	}
}

func TestResponse_CloseUnread(t *testing.T) {
	body := newOnceStream("never read")
	errBody := newOnceStream("also never read")
	resp := client.NewResponse(nil, http.StatusOK, nil, body, errBody)

	if err := resp.Close(); err != nil {
		t.Fatalf("exp nil err, got: %v", err)
	}
	if body.closes != 1 || errBody.closes != 1 {
		t.Errorf("exp both streams closed once; got %d and %d", body.closes, errBody.closes)
	}

	if _, err := resp.BodyText(); !errors.Is(err, client.ErrStreamClosed) {
		t.Errorf("exp err %v; got: %v", client.ErrStreamClosed, err)
	}
	if body.reads != 0 {
		t.Errorf("exp no reads after close; got %d", body.reads)
	}
}

func TestResponse_CloseAfterRead(t *testing.T) {
	body := newOnceStream("read")
	resp := client.NewResponse(nil, http.StatusOK, nil, body, nil)

	resp.BodyString()
	if err := resp.Close(); err != nil {
		t.Fatalf("exp nil err, got: %v", err)
	}
	if body.closes != 1 {
		t.Errorf("exp a single close; got %d", body.closes)
	}
	if got := resp.BodyString(); got != "read" {
		t.Errorf("exp cached text after close; got: %q", got)
	}
}

func TestProcess(t *testing.T) {
	onValid := func(r *client.Response) (string, bool) { return "valid", true }
	onInvalid := func(r *client.Response) (string, bool) { return "invalid", false }

	testCases := map[string]struct {
		code    int
		exp     string
		expOK   bool
		expSide bool
	}{
		"valid":   {code: http.StatusOK, exp: "valid", expOK: true},
		"invalid": {code: http.StatusTeapot, exp: "invalid", expSide: true},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			resp := client.NewResponse(nil, tc.code, nil, nil, nil)

			got, ok := client.Process(resp, onValid, onInvalid)
			if got != tc.exp || ok != tc.expOK {
				t.Errorf("Process: exp %q/%t; got: %q/%t", tc.exp, tc.expOK, got, ok)
			}

			got, ok = client.ProcessFunc(onValid, onInvalid)(resp)
			if got != tc.exp || ok != tc.expOK {
				t.Errorf("ProcessFunc: exp %q/%t; got: %q/%t", tc.exp, tc.expOK, got, ok)
			}

			var side bool
			orElse := func(*client.Response) { side = true }

			got, ok = client.ProcessOrElseFunc(onValid, orElse)(resp)
			if side != tc.expSide {
				t.Errorf("ProcessOrElse: exp side effect %t; got: %t", tc.expSide, side)
			}
			if tc.expSide && (got != "" || ok) {
				t.Errorf("ProcessOrElse: exp zero value; got: %q/%t", got, ok)
			}
		})
	}
}
