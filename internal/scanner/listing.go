package scanner

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// listingMarkers identify auto-generated directory indexes (Apache, nginx,
// lighttpd, Tomcat, IIS). Matched case-insensitively.
var listingMarkers = [][]byte{
	[]byte("parent directory"),
	[]byte("up to "),
	[]byte("directory listing for"),
	[]byte("index of /"),
	[]byte("[to parent directory]"),
}

// IsListing reports whether body looks like a directory index page.
func IsListing(body []byte) bool {
	lower := bytes.ToLower(body)
	for _, m := range listingMarkers {
		if bytes.Contains(lower, m) {
			return true
		}
	}
	return false
}

// FetchDirectory fetches dirURL (normalized to a trailing slash) and checks
// the body for an index page. A target root is always a directory; any other
// URL keeps the Fetcher's classification, so a 404 is neither a directory nor
// listable. It does not follow any links.
func FetchDirectory(ctx context.Context, h *Handle, dirURL string, depth int, isRoot bool) Outcome {
	dirURL = withSlash(dirURL)
	o := h.Probe(ctx, dirURL)
	o.FoundViaScrape = !isRoot
	o.ParentDepth = depth
	if o.Failed() {
		return failedOutcome(dirURL, depth, !isRoot)
	}
	if isRoot {
		o.IsDirectory = true
	}
	o.IsListable = o.IsDirectory && IsListing(h.Body())
	return o
}

// ScrapeDirectory fetches dirURL and, when it is an index page, walks its
// links depth-first. The first element is always the directory itself.
//
// The directory keeps ParentDepth currentDepth and its links get
// currentDepth+1. Sub-directories are expanded while that link depth is below
// maxDepth; at the limit they are probed once and returned unexpanded.
// maxDepth 0 means unbounded.
func ScrapeDirectory(ctx context.Context, h *Handle, dirURL string, maxDepth, currentDepth int, isRoot bool) []Outcome {
	root := FetchDirectory(ctx, h, dirURL, currentDepth, isRoot)
	if !root.IsListable {
		return []Outcome{root}
	}
	children := ScrapeBody(ctx, h, root.URL, h.Body(), maxDepth, currentDepth)
	return append([]Outcome{root}, children...)
}

// ScrapeBody follows the links of an already fetched index page. Links are
// extracted before the first probe, since probing overwrites the handle's
// buffer that body usually aliases. Every direct child has Parent set to
// dirURL.
func ScrapeBody(ctx context.Context, h *Handle, dirURL string, body []byte, maxDepth, currentDepth int) []Outcome {
	dir := withSlash(dirURL)
	base, err := url.Parse(dir)
	if err != nil {
		return nil
	}
	links := childLinks(body, base)
	depth := currentDepth + 1

	var out []Outcome
	for _, link := range links {
		if ctx.Err() != nil {
			break
		}
		isDir := strings.HasSuffix(link, "/")
		if isDir && (maxDepth == 0 || depth < maxDepth) {
			sub := ScrapeDirectory(ctx, h, link, maxDepth, depth, false)
			sub[0].Parent = dir
			out = append(out, sub...)
			continue
		}

		o := h.Probe(ctx, link)
		if o.Failed() {
			o = failedOutcome(link, depth, true)
		} else {
			o.FoundViaScrape = true
			o.ParentDepth = depth
			o.IsListable = o.IsDirectory && IsListing(h.Body())
		}
		o.Parent = dir
		out = append(out, o)
	}
	return out
}

// childLinks returns the absolute form of every <a href> in body that is a
// direct child of base, in document order without duplicates.
func childLinks(body []byte, base *url.URL) []string {
	seen := make(map[string]struct{})
	var links []string

	z := html.NewTokenizer(bytes.NewReader(body))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return links
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if !hasAttr || string(name) != "a" {
				continue
			}
			for {
				key, val, more := z.TagAttr()
				if string(key) == "href" {
					if link, ok := directChild(base, string(val)); ok {
						if _, dup := seen[link]; !dup {
							seen[link] = struct{}{}
							links = append(links, link)
						}
					}
				}
				if !more {
					break
				}
			}
		}
	}
}

// directChild resolves href against base and accepts it only when it names
// exactly one more path segment on the same scheme and host.
func directChild(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "?") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)
	if !strings.EqualFold(abs.Scheme, base.Scheme) || !strings.EqualFold(abs.Host, base.Host) {
		return "", false
	}
	abs.RawQuery = ""
	abs.ForceQuery = false
	abs.Fragment = ""
	abs.RawFragment = ""

	if !strings.HasPrefix(abs.Path, base.Path) {
		return "", false
	}
	rest := strings.TrimSuffix(abs.Path[len(base.Path):], "/")
	if rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return abs.String(), true
}

func withSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}
