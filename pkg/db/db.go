// Package db keeps chat sessions, player statistics and the analysis history
// in sqlite. The default DSN is a shared in-memory database, so nothing
// outlives the process.
package db

import (
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultDSN names a shared-cache in-memory database.
const DefaultDSN = "file:magistr?mode=memory&cache=shared"

//go:embed schema.sql
var migrationsSQL string

// Open connects to dsn and runs the migrations. An empty dsn means DefaultDSN.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}
	// sqlite serialises writers anyway; one connection also keeps a
	// ":memory:" database from splitting per connection.
	conn.SetMaxOpenConns(1)
	if err := InitDB(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// InitDB runs migrations on the given DB connection using the embedded SQL.
func InitDB(db *sql.DB) error {
	stmts := strings.Split(migrationsSQL, ";")
	for _, s := range stmts {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
