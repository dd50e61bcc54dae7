package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/maxvaer/dirprobe/internal/output"
	"github.com/maxvaer/dirprobe/internal/scanner"
)

// FileName is the database file created inside the database directory.
const FileName = "dirprobe.db"

// FindingsDB is the SQLite store for scan runs.
type FindingsDB struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the findings database in dbDir.
func Open(dbDir string) (*FindingsDB, error) {
	if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	dbPath := filepath.Join(dbDir, FileName)

	db, err := sql.Open("sqlite", dbPath+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	fdb := &FindingsDB{db: db, dbPath: dbPath}

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if err := fdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return fdb, nil
}

// Path returns the database file path.
func (f *FindingsDB) Path() string {
	return f.dbPath
}

// Close closes the database connection.
func (f *FindingsDB) Close() error {
	return f.db.Close()
}

func (f *FindingsDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		targets TEXT NOT NULL,
		started DATETIME NOT NULL,
		finished DATETIME,
		requests INTEGER DEFAULT 0,
		errors INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS findings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id INTEGER NOT NULL REFERENCES scans(id),
		url TEXT NOT NULL,
		status_code INTEGER NOT NULL,
		content_length INTEGER NOT NULL,
		redirect_url TEXT,
		is_directory INTEGER NOT NULL,
		is_listable INTEGER NOT NULL,
		found_via_scrape INTEGER NOT NULL,
		parent_depth INTEGER NOT NULL,
		UNIQUE(scan_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_findings_url ON findings(url);

	CREATE TABLE IF NOT EXISTS directories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id INTEGER NOT NULL REFERENCES scans(id),
		url TEXT NOT NULL,
		not_found TEXT,
		depth INTEGER NOT NULL,
		UNIQUE(scan_id, url)
	);
	`
	_, err := f.db.ExecContext(context.Background(), schema)
	return err
}

// BeginScan records a new run and returns its id.
func (f *FindingsDB) BeginScan(ctx context.Context, targets []string) (int64, error) {
	res, err := f.db.ExecContext(ctx,
		"INSERT INTO scans (targets, started) VALUES (?, ?)",
		strings.Join(targets, ","), time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert scan: %w", err)
	}
	return res.LastInsertId()
}

// FinishScan stores the end time and counters of a run.
func (f *FindingsDB) FinishScan(ctx context.Context, scanID int64, stats output.Stats) error {
	_, err := f.db.ExecContext(ctx,
		"UPDATE scans SET finished = ?, requests = ?, errors = ? WHERE id = ?",
		time.Now().UTC(), stats.TotalRequests, stats.ErrorCount, scanID)
	if err != nil {
		return fmt.Errorf("failed to finish scan %d: %w", scanID, err)
	}
	return nil
}

// InsertFinding stores one finding. A URL already stored for the run is
// left unchanged.
func (f *FindingsDB) InsertFinding(ctx context.Context, scanID int64, o *scanner.Outcome) error {
	_, err := f.db.ExecContext(ctx, `
	INSERT INTO findings (scan_id, url, status_code, content_length, redirect_url,
		is_directory, is_listable, found_via_scrape, parent_depth)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(scan_id, url) DO NOTHING`,
		scanID, o.URL, o.StatusCode, o.ContentLength, o.RedirectURL,
		o.IsDirectory, o.IsListable, o.FoundViaScrape, o.ParentDepth)
	if err != nil {
		return fmt.Errorf("failed to insert finding %s: %w", o.URL, err)
	}
	return nil
}

// InsertDirectory stores an opened directory.
func (f *FindingsDB) InsertDirectory(ctx context.Context, scanID int64, dir output.Directory) error {
	_, err := f.db.ExecContext(ctx, `
	INSERT INTO directories (scan_id, url, not_found, depth) VALUES (?, ?, ?, ?)
	ON CONFLICT(scan_id, url) DO NOTHING`,
		scanID, dir.URL, dir.Signature, dir.Depth)
	if err != nil {
		return fmt.Errorf("failed to insert directory %s: %w", dir.URL, err)
	}
	return nil
}

// Findings returns the findings of a run in insertion order.
func (f *FindingsDB) Findings(ctx context.Context, scanID int64) ([]scanner.Outcome, error) {
	rows, err := f.db.QueryContext(ctx, `
	SELECT url, status_code, content_length, COALESCE(redirect_url, ''),
		is_directory, is_listable, found_via_scrape, parent_depth
	FROM findings WHERE scan_id = ? ORDER BY id`, scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings: %w", err)
	}
	defer rows.Close()

	var out []scanner.Outcome
	for rows.Next() {
		var o scanner.Outcome
		if err := rows.Scan(&o.URL, &o.StatusCode, &o.ContentLength, &o.RedirectURL,
			&o.IsDirectory, &o.IsListable, &o.FoundViaScrape, &o.ParentDepth); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Directories returns the directory URLs opened during a run.
func (f *FindingsDB) Directories(ctx context.Context, scanID int64) ([]string, error) {
	rows, err := f.db.QueryContext(ctx, "SELECT url FROM directories WHERE scan_id = ? ORDER BY id", scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query directories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
