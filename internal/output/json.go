package output

import (
	"encoding/json"
	"io"

	"github.com/maxvaer/dirprobe/internal/scanner"
)

type jsonEntry struct {
	URL            string `json:"url"`
	Path           string `json:"path"`
	StatusCode     int    `json:"status"`
	ContentLength  int64  `json:"size"`
	RedirectURL    string `json:"redirect,omitempty"`
	IsDirectory    bool   `json:"is_directory"`
	IsListable     bool   `json:"is_listable"`
	FoundViaScrape bool   `json:"found_from_listable"`
	ParentDepth    int    `json:"parent_depth"`
}

type jsonDirectory struct {
	URL       string `json:"url"`
	Signature string `json:"not_found,omitempty"`
	Depth     int    `json:"depth"`
	Listable  bool   `json:"is_listable"`
}

type jsonReport struct {
	Findings    []jsonEntry     `json:"findings"`
	Directories []jsonDirectory `json:"directories"`
	Stats       jsonStats       `json:"stats"`
}

type jsonStats struct {
	Requests  int     `json:"requests"`
	Filtered  int     `json:"filtered"`
	Errors    int     `json:"errors"`
	Abandoned int     `json:"abandoned"`
	Seconds   float64 `json:"duration_seconds"`
}

// JSONWriter writes a single JSON document when the scan ends.
type JSONWriter struct {
	w      io.Writer
	closer io.Closer
	report jsonReport
}

// NewJSONWriter creates a JSON output writer.
func NewJSONWriter(outputFile string) (*JSONWriter, error) {
	w, closer, err := createOutput(outputFile)
	if err != nil {
		return nil, err
	}
	return &JSONWriter{
		w:      w,
		closer: closer,
		report: jsonReport{Findings: []jsonEntry{}, Directories: []jsonDirectory{}},
	}, nil
}

func (j *JSONWriter) WriteHeader() error { return nil }

func (j *JSONWriter) WriteResult(o *scanner.Outcome) error {
	j.report.Findings = append(j.report.Findings, jsonEntry{
		URL:            o.URL,
		Path:           relativePath(o.URL),
		StatusCode:     o.StatusCode,
		ContentLength:  o.ContentLength,
		RedirectURL:    o.RedirectURL,
		IsDirectory:    o.IsDirectory,
		IsListable:     o.IsListable,
		FoundViaScrape: o.FoundViaScrape,
		ParentDepth:    o.ParentDepth,
	})
	return nil
}

func (j *JSONWriter) WriteDirectory(dir Directory) error {
	j.report.Directories = append(j.report.Directories, jsonDirectory{
		URL:       dir.URL,
		Signature: dir.Signature,
		Depth:     dir.Depth,
		Listable:  dir.Listable,
	})
	return nil
}

func (j *JSONWriter) WriteFooter(stats Stats) error {
	j.report.Stats = jsonStats{
		Requests:  stats.TotalRequests,
		Filtered:  stats.FilteredCount,
		Errors:    stats.ErrorCount,
		Abandoned: stats.AbandonedCount,
		Seconds:   stats.Duration.Seconds(),
	}
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	return enc.Encode(j.report)
}

func (j *JSONWriter) Close() error {
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}
