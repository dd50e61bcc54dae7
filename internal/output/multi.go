package output

import (
	"errors"

	"github.com/maxvaer/dirprobe/internal/scanner"
)

// MultiWriter fans every call out to several writers, e.g. the terminal and
// a findings database. Every writer is called even if an earlier one fails.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter combines writers. A single writer is returned unwrapped.
func NewMultiWriter(writers ...Writer) Writer {
	if len(writers) == 1 {
		return writers[0]
	}
	return &MultiWriter{writers: writers}
}

func (m *MultiWriter) each(fn func(Writer) error) error {
	var errs []error
	for _, w := range m.writers {
		if err := fn(w); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiWriter) WriteHeader() error {
	return m.each(func(w Writer) error { return w.WriteHeader() })
}

func (m *MultiWriter) WriteResult(o *scanner.Outcome) error {
	return m.each(func(w Writer) error { return w.WriteResult(o) })
}

func (m *MultiWriter) WriteDirectory(dir Directory) error {
	return m.each(func(w Writer) error { return w.WriteDirectory(dir) })
}

func (m *MultiWriter) WriteFooter(stats Stats) error {
	return m.each(func(w Writer) error { return w.WriteFooter(stats) })
}

func (m *MultiWriter) Close() error {
	return m.each(func(w Writer) error { return w.Close() })
}
