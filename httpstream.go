// Package httpstream exposes the client and request builders.
package httpstream

import (
	"github.com/adamwoolhether/httpstream/client"
)

// NewClient instantiates a new *Client with the provided options.
// Without options it gets a fresh http.Client over a clone of
// http.DefaultTransport whose dialer uses [client.ConnectTimeout].
func NewClient(opts ...client.Option) (*client.Client, error) {
	return client.Build(opts...)
}

// NewRequest starts a request builder bound to the shared default client.
func NewRequest() *client.Request {
	return client.NewRequest()
}
