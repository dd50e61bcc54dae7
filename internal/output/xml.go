package output

import (
	"encoding/xml"
	"io"

	"github.com/maxvaer/dirprobe/internal/scanner"
)

type xmlPath struct {
	URL            string `xml:"url,attr"`
	StatusCode     int    `xml:"code,attr"`
	ContentLength  int64  `xml:"content_len,attr"`
	IsDirectory    bool   `xml:"is_directory,attr"`
	IsListable     bool   `xml:"is_listable,attr"`
	FoundViaScrape bool   `xml:"found_from_listable,attr"`
	RedirectURL    string `xml:"redirect_url,attr,omitempty"`
}

type xmlDirectory struct {
	URL       string `xml:"url,attr"`
	Signature string `xml:"not_found,attr,omitempty"`
	Depth     int    `xml:"depth,attr"`
}

type xmlReport struct {
	XMLName     xml.Name       `xml:"dirprobe"`
	Directories []xmlDirectory `xml:"directory"`
	Paths       []xmlPath      `xml:"path"`
}

// XMLWriter writes a single XML document when the scan ends.
type XMLWriter struct {
	w      io.Writer
	closer io.Closer
	report xmlReport
}

// NewXMLWriter creates an XML output writer.
func NewXMLWriter(outputFile string) (*XMLWriter, error) {
	w, closer, err := createOutput(outputFile)
	if err != nil {
		return nil, err
	}
	return &XMLWriter{w: w, closer: closer}, nil
}

func (x *XMLWriter) WriteHeader() error { return nil }

func (x *XMLWriter) WriteResult(o *scanner.Outcome) error {
	x.report.Paths = append(x.report.Paths, xmlPath{
		URL:            o.URL,
		StatusCode:     o.StatusCode,
		ContentLength:  o.ContentLength,
		IsDirectory:    o.IsDirectory,
		IsListable:     o.IsListable,
		FoundViaScrape: o.FoundViaScrape,
		RedirectURL:    o.RedirectURL,
	})
	return nil
}

func (x *XMLWriter) WriteDirectory(dir Directory) error {
	x.report.Directories = append(x.report.Directories, xmlDirectory{
		URL:       dir.URL,
		Signature: dir.Signature,
		Depth:     dir.Depth,
	})
	return nil
}

func (x *XMLWriter) WriteFooter(_ Stats) error {
	if _, err := io.WriteString(x.w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(x.w)
	enc.Indent("", "  ")
	if err := enc.Encode(x.report); err != nil {
		return err
	}
	_, err := io.WriteString(x.w, "\n")
	return err
}

func (x *XMLWriter) Close() error {
	if x.closer != nil {
		return x.closer.Close()
	}
	return nil
}
