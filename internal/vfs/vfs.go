// Package vfs adapts an archive into a filesystem scope the embedded
// database engine can open.
//
// The scope is derived from the archive's path, not from a live
// reader: the database entry is materialized into a private instance
// directory and opened through the sqlite3 driver. The materialized
// copy lives for the lifetime of the connection, so a database handle
// does not depend on its parent archive handle staying open. The safe
// usage pattern is still to close the database before its archive.
package vfs

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/engramdb/engram/internal/archive"
)

// Conn is an open database connection scoped to one archive.
type Conn struct {
	DB  *sql.DB
	dir string
}

// OpenDatabase materializes dbPath from the archive at archivePath and
// opens it. A dbPath the archive does not contain starts empty, so a
// caller can build a scratch database next to a read-only archive.
func OpenDatabase(archivePath, dbPath string) (*Conn, error) {
	r, err := archive.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	var data []byte
	if r.Contains(dbPath) {
		data, err = r.ReadFile(dbPath)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
	}
	r.Close()

	// Each connection gets its own instance directory so two handles
	// over the same entry never share page files.
	dir := filepath.Join(os.TempDir(), "engram-vfs", uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create database scope: %w", err)
	}

	file := filepath.Join(dir, filepath.Base(dbPath))
	if err := os.WriteFile(file, data, 0o600); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("materialize database: %w", err)
	}

	db, err := sql.Open("sqlite3", file)
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports one writer; a single pooled connection avoids
	// SQLITE_BUSY and keeps the resource lock the only serialization
	// point.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Conn{DB: db, dir: dir}, nil
}

// Close closes the connection and removes the instance directory.
func (c *Conn) Close() error {
	err := c.DB.Close()
	if rmErr := os.RemoveAll(c.dir); err == nil {
		err = rmErr
	}
	return err
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}
