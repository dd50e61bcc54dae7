// Package database stores scan findings in SQLite so results from many runs
// can be queried together.
//
// Each run is a row in scans; its findings and opened directories reference
// it. The database is a single file (modernc.org/sqlite, no cgo) under the
// XDG data directory unless --db-dir says otherwise.
package database
