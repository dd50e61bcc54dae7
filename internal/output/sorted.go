package output

import (
	"sort"

	"github.com/maxvaer/dirprobe/internal/scanner"
)

// SortedWriter buffers findings and replays them sorted when WriteFooter is
// called. Directory events pass straight through. It wraps any other Writer.
type SortedWriter struct {
	inner    Writer
	sortBy   string
	outcomes []*scanner.Outcome
}

// NewSortedWriter wraps inner and buffers findings for sorted replay.
// sortBy is one of "status", "size" or "url"; "url" groups findings by
// directory.
func NewSortedWriter(inner Writer, sortBy string) *SortedWriter {
	return &SortedWriter{inner: inner, sortBy: sortBy}
}

func (w *SortedWriter) WriteHeader() error {
	return w.inner.WriteHeader()
}

func (w *SortedWriter) WriteResult(o *scanner.Outcome) error {
	cpy := *o
	w.outcomes = append(w.outcomes, &cpy)
	return nil
}

func (w *SortedWriter) WriteDirectory(dir Directory) error {
	return w.inner.WriteDirectory(dir)
}

func (w *SortedWriter) WriteFooter(stats Stats) error {
	sort.SliceStable(w.outcomes, func(i, j int) bool {
		a, b := w.outcomes[i], w.outcomes[j]
		switch w.sortBy {
		case "status":
			return a.StatusCode < b.StatusCode
		case "size":
			return a.ContentLength < b.ContentLength
		case "url":
			da, db := DirectoryName(a), DirectoryName(b)
			if da != db {
				return da < db
			}
			return a.URL < b.URL
		default:
			return false
		}
	})
	for _, o := range w.outcomes {
		if err := w.inner.WriteResult(o); err != nil {
			return err
		}
	}
	return w.inner.WriteFooter(stats)
}

func (w *SortedWriter) Close() error {
	return w.inner.Close()
}
