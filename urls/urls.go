// Package urls joins URL path segments and resolves page relative
// references found while crawling.
package urls

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var absoluteRef = regexp.MustCompile(`^https?://.+`)

// CombinePath joins base and path with exactly one slash between them,
// regardless of whether base ends with or path starts with one.
//
//	CombinePath("http://a/b/", "/c/") == "http://a/b/c/"
func CombinePath(base, path string) string {
	switch {
	case strings.HasSuffix(base, "/") && strings.HasPrefix(path, "/"):
		return base + path[1:]
	case !strings.HasSuffix(base, "/") && !strings.HasPrefix(path, "/"):
		return base + "/" + path
	default:
		return base + path
	}
}

// CombineParts folds every part onto the first with [CombinePath].
// No validation is done on the result, use [FromString] for that.
func CombineParts(parts ...string) string {
	if len(parts) == 0 {
		return ""
	}

	combined := parts[0]
	for _, part := range parts[1:] {
		combined = CombinePath(combined, part)
	}

	return combined
}

// CombineURL is CombinePath against the string form of base.
func CombineURL(base *url.URL, path string) string {
	return CombinePath(base.String(), path)
}

// FromString parses an absolute URL.
func FromString(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing url[%s]: %w", raw, err)
	}

	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("url[%s] %w", raw, ErrNotAbsolute)
	}

	return u, nil
}

// FullURLFromReference returns ref untouched when it is already an
// absolute http(s) URL, otherwise it is appended to src.
func FullURLFromReference(ref, src string) string {
	if absoluteRef.MatchString(ref) {
		return ref
	}

	return CombinePath(src, ref)
}

// ResolveReference is FullURLFromReference followed by [FromString].
func ResolveReference(ref string, src *url.URL) (*url.URL, error) {
	return FromString(FullURLFromReference(ref, src.String()))
}
