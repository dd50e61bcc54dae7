package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/maxvaer/dirprobe/internal/scanner"
)

// ANSI color codes.
const (
	colorReset  = "\033[0m"
	colorDim    = "\033[2m"
	colorBold   = "\033[1m"
	colorGreen  = "\033[32m"
	colorCyan   = "\033[36m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
)

// TextWriter writes colored text output to a writer.
type TextWriter struct {
	w       io.Writer
	closer  io.Closer
	noColor bool
	quiet   bool
}

// NewTextWriter creates a text output writer. If outputFile is empty, stdout
// is used. noColor disables ANSI escape codes.
func NewTextWriter(outputFile string, noColor, quiet bool) (*TextWriter, error) {
	w, closer, err := createOutput(outputFile)
	if err != nil {
		return nil, err
	}
	return &TextWriter{w: w, closer: closer, noColor: noColor, quiet: quiet}, nil
}

func (t *TextWriter) WriteHeader() error {
	if t.quiet {
		return nil
	}
	_, err := fmt.Fprintf(t.w, "%sCode      Size  URL%s\n", t.color(colorDim), t.color(colorReset))
	return err
}

func (t *TextWriter) WriteResult(o *scanner.Outcome) error {
	redirectInfo := ""
	if o.RedirectURL != "" {
		redirectInfo = fmt.Sprintf(" -> %s", o.RedirectURL)
	}
	tags := ""
	if o.IsListable {
		tags += " [listable]"
	}
	if o.FoundViaScrape {
		tags += " [scraped]"
	}

	_, err := fmt.Fprintf(t.w, "%s%3d%s  %8d  %s%s%s%s%s\n",
		t.colorForStatus(o.StatusCode), o.StatusCode, t.color(colorReset),
		o.ContentLength,
		o.URL,
		redirectInfo,
		t.color(colorDim), tags, t.color(colorReset),
	)
	return err
}

func (t *TextWriter) WriteDirectory(dir Directory) error {
	if t.quiet {
		return nil
	}
	sig := ""
	if dir.Signature != "" {
		sig = " " + dir.Signature
	}
	_, err := fmt.Fprintf(t.w, "%s==> DIRECTORY: %s%s%s\n", t.color(colorBold), dir.URL, sig, t.color(colorReset))
	return err
}

func (t *TextWriter) WriteFooter(stats Stats) error {
	if t.quiet {
		return nil
	}
	_, err := fmt.Fprintf(os.Stderr,
		"\nCompleted: %d requests | Found: %d | Directories: %d | Filtered: %d | Errors: %d | Duration: %s | %.1f req/s\n",
		stats.TotalRequests,
		stats.Findings,
		stats.Directories,
		stats.FilteredCount,
		stats.ErrorCount,
		stats.Duration.Round(time.Millisecond),
		stats.RequestsPerSec,
	)
	if err == nil && stats.AbandonedCount > 0 {
		_, err = fmt.Fprintf(os.Stderr, "[!] %d paths skipped on hosts that exceeded the error budget\n", stats.AbandonedCount)
	}
	return err
}

func (t *TextWriter) Close() error {
	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}

func (t *TextWriter) color(c string) string {
	if t.noColor {
		return ""
	}
	return c
}

func (t *TextWriter) colorForStatus(code int) string {
	if t.noColor {
		return ""
	}
	switch {
	case code >= 200 && code < 300:
		return colorGreen
	case code >= 300 && code < 400:
		return colorCyan
	case code >= 400 && code < 500:
		return colorYellow
	case code >= 500:
		return colorRed
	default:
		return ""
	}
}
