package output

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/maxvaer/dirprobe/internal/scanner"
)

// MarkdownWriter renders a Markdown report when the scan ends.
type MarkdownWriter struct {
	w           io.Writer
	closer      io.Closer
	targets     []string
	started     time.Time
	findings    []scanner.Outcome
	directories []Directory
}

// NewMarkdownWriter creates a Markdown report writer.
func NewMarkdownWriter(outputFile string, targets []string) (*MarkdownWriter, error) {
	w, closer, err := createOutput(outputFile)
	if err != nil {
		return nil, err
	}
	return &MarkdownWriter{w: w, closer: closer, targets: targets}, nil
}

func (m *MarkdownWriter) WriteHeader() error {
	m.started = time.Now()
	return nil
}

func (m *MarkdownWriter) WriteResult(o *scanner.Outcome) error {
	m.findings = append(m.findings, *o)
	return nil
}

func (m *MarkdownWriter) WriteDirectory(dir Directory) error {
	m.directories = append(m.directories, dir)
	return nil
}

func (m *MarkdownWriter) WriteFooter(stats Stats) error {
	md := markdown.NewMarkdown(m.w)

	md.H1("dirprobe report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Started", m.started.Format("2006-01-02 15:04:05 MST")},
			{"Duration", stats.Duration.Round(time.Millisecond).String()},
			{"Requests", strconv.Itoa(stats.TotalRequests)},
			{"Findings", strconv.Itoa(stats.Findings)},
			{"Filtered", strconv.Itoa(stats.FilteredCount)},
			{"Errors", strconv.Itoa(stats.ErrorCount)},
		},
	})
	md.PlainText("")

	if len(m.targets) > 0 {
		md.H2("Targets")
		md.PlainText("")
		md.BulletList(m.targets...)
		md.PlainText("")
	}

	md.H2("Directories")
	md.PlainText("")
	if len(m.directories) == 0 {
		md.PlainText("No directories scanned.")
	} else {
		rows := make([][]string, len(m.directories))
		for i, d := range m.directories {
			sig := d.Signature
			if sig == "" {
				sig = "-"
			}
			rows[i] = []string{"`" + d.URL + "`", strconv.Itoa(d.Depth), sig, strconv.FormatBool(d.Listable)}
		}
		md.Table(markdown.TableSet{Header: []string{"URL", "Depth", "Not found", "Listable"}, Rows: rows})
	}
	md.PlainText("")

	md.H2("Findings")
	md.PlainText("")
	if len(m.findings) == 0 {
		md.PlainText("Nothing found.")
	} else {
		rows := make([][]string, len(m.findings))
		for i, o := range m.findings {
			redirect := o.RedirectURL
			if redirect == "" {
				redirect = "-"
			}
			source := "wordlist"
			if o.FoundViaScrape {
				source = "listing"
			}
			rows[i] = []string{"`" + o.URL + "`", strconv.Itoa(o.StatusCode), strconv.FormatInt(o.ContentLength, 10), redirect, source}
		}
		md.Table(markdown.TableSet{Header: []string{"URL", "Code", "Size", "Redirect", "Source"}, Rows: rows})
	}
	md.PlainText("")

	if stats.AbandonedCount > 0 {
		md.Warningf("%d paths were skipped on hosts that exceeded the error budget.", stats.AbandonedCount)
		md.PlainText("")
	}

	return md.Build()
}

func (m *MarkdownWriter) Close() error {
	if m.closer != nil {
		return m.closer.Close()
	}
	return nil
}
