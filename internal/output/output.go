// Package output renders scan findings and opened directories.
package output

import (
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/maxvaer/dirprobe/internal/scanner"
)

// Stats holds aggregate scan statistics.
type Stats struct {
	TotalRequests  int
	Findings       int
	FilteredCount  int
	ErrorCount     int
	AbandonedCount int
	Directories    int
	Duration       time.Duration
	RequestsPerSec float64
}

// Directory is a directory that received its own wordlist pass.
type Directory struct {
	URL       string
	Signature string // "(CODE:404)" style baseline, "" when unfiltered
	Depth     int
	Listable  bool
}

// Writer is implemented by each output format.
type Writer interface {
	WriteHeader() error
	WriteResult(o *scanner.Outcome) error
	WriteDirectory(dir Directory) error
	WriteFooter(stats Stats) error
	Close() error
}

// createOutput opens path for writing, or returns stdout when path is empty.
// The closer is nil for stdout.
func createOutput(path string) (io.Writer, io.Closer, error) {
	if path == "" {
		return os.Stdout, nil, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

// DirectoryName returns the directory an outcome belongs to, without a
// trailing slash. A directory outcome is its own directory.
func DirectoryName(o *scanner.Outcome) string {
	trimmed := strings.TrimSuffix(o.URL, "/")
	if o.IsDirectory || strings.HasSuffix(o.URL, "/") {
		return trimmed
	}
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}

// relativePath returns the path component of raw, or raw itself if it does
// not parse.
func relativePath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" {
		return raw
	}
	return u.Path
}
