package client

import (
	"context"
	"crypto/tls"
	"net/http"
	"sync"
)

// insecureTLSConfig skips certificate chain and hostname verification.
// Transports other than insecureTransport take a Clone since HTTP/2 setup
// edits NextProtos in place.
var insecureTLSConfig = sync.OnceValue(func() *tls.Config {
	return &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via IgnoringSelfSignedCert.
})

var insecureTransport = sync.OnceValue(func() *http.Transport {
	t := newBaseTransport()
	t.TLSClientConfig = insecureTLSConfig()
	return t
})

// insecureFor returns the trust-all counterpart of rt. Custom
// *http.Transport values keep their settings; any other RoundTripper
// falls back to the shared insecure transport.
func insecureFor(rt http.RoundTripper) http.RoundTripper {
	t, ok := rt.(*http.Transport)
	if !ok || t == defaultTransport() {
		return insecureTransport()
	}

	cpy := t.Clone()
	cpy.TLSClientConfig = insecureTLSConfig().Clone()
	return cpy
}

type insecureKey struct{}

func withInsecure(ctx context.Context) context.Context {
	return context.WithValue(ctx, insecureKey{}, true)
}

func isInsecure(ctx context.Context) bool {
	v, _ := ctx.Value(insecureKey{}).(bool)
	return v
}

// tlsSelector is an http.RoundTripper routing requests flagged through
// withInsecure to the trust-all transport.
type tlsSelector struct {
	secure   http.RoundTripper
	insecure http.RoundTripper
}

func (s tlsSelector) RoundTrip(r *http.Request) (*http.Response, error) {
	if isInsecure(r.Context()) {
		return s.insecure.RoundTrip(r)
	}
	return s.secure.RoundTrip(r)
}
