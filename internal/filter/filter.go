// Package filter decides which outcomes are hidden from output.
package filter

import (
	"github.com/maxvaer/dirprobe/internal/config"
	"github.com/maxvaer/dirprobe/internal/scanner"
)

// Filter decides whether an outcome should be hidden from output.
type Filter interface {
	Name() string
	ShouldFilter(o *scanner.Outcome) bool
}

// Chain applies multiple filters in order, short-circuiting on the first match.
type Chain struct {
	filters []Filter
}

// NewChain returns an empty filter chain.
func NewChain() *Chain {
	return &Chain{}
}

// FromOptions builds the chain used for findings: status codes, sizes,
// .ht* files and, if enabled, repeated responses.
func FromOptions(opts *config.Options) *Chain {
	c := NewChain()
	c.Add(NewStatusFilter(opts.IncludeStatus, opts.ExcludeStatus))
	if len(opts.ExcludeSize) > 0 {
		c.Add(NewSizeFilter(opts.ExcludeSize))
	}
	if !opts.ShowHtaccess {
		c.Add(NewHtaccessFilter())
	}
	if opts.DuplicateThreshold > 0 {
		c.Add(NewDuplicateFilter(opts.DuplicateThreshold))
	}
	return c
}

// Add appends a filter to the chain.
func (c *Chain) Add(f Filter) {
	c.filters = append(c.filters, f)
}

// Apply runs every filter against o. Returns true and the filter name if the
// outcome should be filtered out.
func (c *Chain) Apply(o *scanner.Outcome) (bool, string) {
	for _, f := range c.filters {
		if f.ShouldFilter(o) {
			return true, f.Name()
		}
	}
	return false, ""
}
