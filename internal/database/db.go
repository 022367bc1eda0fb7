package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "modernc.org/sqlite"
)

// DB wraps sql.DB with additional methods
type DB struct {
	*sql.DB
}

// Applied by the driver to every pooled connection
var pragmas = []string{
	"busy_timeout(5000)",
	// WAL for better concurrent access
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
}

// uriEscaper keeps characters that delimit a SQLite URI out of the path
var uriEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

func dsn(path string) string {
	return "file:" + uriEscaper.Replace(path) + "?" + url.Values{"_pragma": pragmas}.Encode()
}

// New creates a new database connection
func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("database open failed: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database open failed: %w", err)
	}

	return &DB{db}, nil
}

// InitSchema creates all necessary tables
func (db *DB) InitSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS current_downtime (
        id INTEGER PRIMARY KEY,
        "start" INTEGER NOT NULL,
        "end" INTEGER NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_current_downtime_end ON current_downtime("end");
    `

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}

	return nil
}
