package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/maxvaer/dirprobe/internal/scanner"
)

// CSVWriter writes findings in CSV format. Directories are not listed
// separately; they appear as findings with is_directory set.
type CSVWriter struct {
	w      *csv.Writer
	closer io.Closer
}

// NewCSVWriter creates a CSV output writer.
func NewCSVWriter(outputFile string) (*CSVWriter, error) {
	w, closer, err := createOutput(outputFile)
	if err != nil {
		return nil, err
	}
	return &CSVWriter{w: csv.NewWriter(w), closer: closer}, nil
}

func (c *CSVWriter) WriteHeader() error {
	return c.w.Write([]string{"url", "path", "status", "size", "redirect", "is_directory", "is_listable", "scraped", "depth"})
}

func (c *CSVWriter) WriteResult(o *scanner.Outcome) error {
	return c.w.Write([]string{
		o.URL,
		relativePath(o.URL),
		strconv.Itoa(o.StatusCode),
		strconv.FormatInt(o.ContentLength, 10),
		o.RedirectURL,
		strconv.FormatBool(o.IsDirectory),
		strconv.FormatBool(o.IsListable),
		strconv.FormatBool(o.FoundViaScrape),
		strconv.Itoa(o.ParentDepth),
	})
}

func (c *CSVWriter) WriteDirectory(Directory) error { return nil }

func (c *CSVWriter) WriteFooter(_ Stats) error {
	c.w.Flush()
	return c.w.Error()
}

func (c *CSVWriter) Close() error {
	if c.closer != nil {
		return c.closer.Close()
	}
	return nil
}
