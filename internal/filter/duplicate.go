package filter

import (
	"net/url"
	"path"
	"sync"

	"github.com/maxvaer/dirprobe/internal/scanner"
)

// responseKey identifies a response shape within one directory.
type responseKey struct {
	dir           string
	statusCode    int
	contentLength int64
}

// DuplicateFilter hides responses that repeat within a directory with the
// same status code and length. It catches catch-all routes below a directory
// whose baseline probes hit a different handler, e.g. /app/login/* always
// serving the same login page.
type DuplicateFilter struct {
	mu        sync.Mutex
	seen      map[responseKey]int
	threshold int
}

// NewDuplicateFilter returns a filter that lets threshold identical responses
// per directory through before hiding the rest.
func NewDuplicateFilter(threshold int) *DuplicateFilter {
	return &DuplicateFilter{
		seen:      make(map[responseKey]int),
		threshold: threshold,
	}
}

func (d *DuplicateFilter) Name() string { return "duplicate" }

func (d *DuplicateFilter) ShouldFilter(o *scanner.Outcome) bool {
	key := responseKey{
		dir:           parentDir(o.URL),
		statusCode:    o.StatusCode,
		contentLength: o.ContentLength,
	}

	d.mu.Lock()
	d.seen[key]++
	count := d.seen[key]
	d.mu.Unlock()

	return count > d.threshold
}

func parentDir(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return path.Dir(raw)
	}
	return u.Host + path.Dir(path.Clean("/"+u.Path))
}
