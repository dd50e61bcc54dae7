package database

import (
	"context"

	"github.com/maxvaer/dirprobe/internal/output"
	"github.com/maxvaer/dirprobe/internal/scanner"
)

// Writer is an output.Writer that records one run in a FindingsDB. It owns
// the database and closes it on Close.
type Writer struct {
	db      *FindingsDB
	targets []string
	scanID  int64
}

// NewWriter opens the database in dbDir for a run against targets.
func NewWriter(dbDir string, targets []string) (*Writer, error) {
	db, err := Open(dbDir)
	if err != nil {
		return nil, err
	}
	return &Writer{db: db, targets: targets}, nil
}

// ScanID returns the id of the run, valid after WriteHeader.
func (w *Writer) ScanID() int64 {
	return w.scanID
}

func (w *Writer) WriteHeader() error {
	id, err := w.db.BeginScan(context.Background(), w.targets)
	if err != nil {
		return err
	}
	w.scanID = id
	return nil
}

func (w *Writer) WriteResult(o *scanner.Outcome) error {
	return w.db.InsertFinding(context.Background(), w.scanID, o)
}

func (w *Writer) WriteDirectory(dir output.Directory) error {
	return w.db.InsertDirectory(context.Background(), w.scanID, dir)
}

func (w *Writer) WriteFooter(stats output.Stats) error {
	return w.db.FinishScan(context.Background(), w.scanID, stats)
}

func (w *Writer) Close() error {
	return w.db.Close()
}
