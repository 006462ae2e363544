package urls

import "errors"

// ErrNotAbsolute is returned when a URL lacks a scheme or host.
var ErrNotAbsolute = errors.New("is not an absolute url")
