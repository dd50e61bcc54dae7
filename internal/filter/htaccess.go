package filter

import (
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/maxvaer/dirprobe/internal/scanner"
)

// HtaccessFilter hides forbidden Apache access files (.htaccess, .htpasswd,
// ...). Apache answers 403 for any .ht* name, whether it exists or not. A
// readable .ht* file is still reported.
type HtaccessFilter struct{}

// NewHtaccessFilter returns the .ht* filter.
func NewHtaccessFilter() *HtaccessFilter {
	return &HtaccessFilter{}
}

func (f *HtaccessFilter) Name() string { return "htaccess" }

func (f *HtaccessFilter) ShouldFilter(o *scanner.Outcome) bool {
	if o.StatusCode != http.StatusForbidden {
		return false
	}
	p := o.URL
	if u, err := url.Parse(o.URL); err == nil {
		p = u.Path
	}
	return strings.HasPrefix(path.Base(p), ".ht")
}
