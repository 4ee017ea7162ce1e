package anki

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Ledger remembers which media files were already stored in Anki, so that
// re-runs with unchanged records do not upload the same bytes again. It is a
// single sqlite table keyed by the deterministic media filename.
type Ledger struct {
	db *sql.DB
}

// OpenLedger opens (creating if necessary) the ledger database at path
func OpenLedger(path string) (*Ledger, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS media_uploads (
		filename    TEXT PRIMARY KEY,
		uploaded_at INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create ledger schema: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Has reports whether the filename was uploaded by a previous run
func (l *Ledger) Has(filename string) (bool, error) {
	var count int
	err := l.db.QueryRow("SELECT COUNT(1) FROM media_uploads WHERE filename = ?", filename).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("ledger lookup failed: %w", err)
	}
	return count > 0, nil
}

// Record marks the filename as uploaded
func (l *Ledger) Record(filename string) error {
	_, err := l.db.Exec("INSERT OR REPLACE INTO media_uploads (filename, uploaded_at) VALUES (?, ?)",
		filename, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("ledger insert failed: %w", err)
	}
	return nil
}

// Close closes the underlying database
func (l *Ledger) Close() error {
	return l.db.Close()
}
