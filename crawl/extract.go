package crawl

import (
	"fmt"
	"mime"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/adamwoolhether/httpstream/client"
	"github.com/adamwoolhether/httpstream/urls"
)

// Extractor returns the links found in a fetched page.
type Extractor func(resp *client.Response) ([]*url.URL, error)

var anchorHref = regexp.MustCompile(`(?i)<a\s[^>]*?href="([^"]+)"`)

// AnchorExtractor scans the body of a 2xx HTML page for anchor hrefs.
// Refs starting with "." are skipped; others resolve against the page URL
// through [urls.ResolveReference].
func AnchorExtractor(resp *client.Response) ([]*url.URL, error) {
	if !isHTML(resp) {
		return nil, nil
	}

	text, err := resp.BodyText()
	if err != nil {
		return nil, fmt.Errorf("reading page: %w", err)
	}

	matches := anchorHref.FindAllStringSubmatch(text, -1)
	refs := make([]string, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, m[1])
	}

	return resolveAll(refs, resp.SourceURL), nil
}

// DocumentExtractor parses the page as HTML and collects the href of
// every a element. It filters pages and refs like [AnchorExtractor].
func DocumentExtractor(resp *client.Response) ([]*url.URL, error) {
	if !isHTML(resp) {
		return nil, nil
	}

	text, err := resp.BodyText()
	if err != nil {
		return nil, fmt.Errorf("reading page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	var refs []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok && href != "" {
			refs = append(refs, href)
		}
	})

	return resolveAll(refs, resp.SourceURL), nil
}

// isHTML treats a missing Content-Type as HTML.
func isHTML(resp *client.Response) bool {
	if !resp.IsValidResponse() {
		return false
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		return true
	}

	mediaType, _, err := mime.ParseMediaType(ct)
	return err == nil && mediaType == "text/html"
}

func resolveAll(refs []string, src *url.URL) []*url.URL {
	if src == nil {
		return nil
	}

	seen := make(map[string]struct{}, len(refs))
	var out []*url.URL
	for _, ref := range refs {
		if strings.HasPrefix(ref, ".") {
			continue
		}

		u, err := urls.ResolveReference(ref, src)
		if err != nil {
			continue
		}

		if _, dup := seen[u.String()]; dup {
			continue
		}
		seen[u.String()] = struct{}{}
		out = append(out, u)
	}

	return out
}
