package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// NewSQLiteDB opens a SQLite database file; ":memory:" is accepted for tests.
func NewSQLiteDB(path string, logger *slog.Logger) (*DBClient, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening sqlite database %q: %w", path, err)
	}
	// A single connection keeps ":memory:" databases coherent and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to sqlite database: %w", err)
	}

	client := &DBClient{DB: db, Dialect: SQLite, logger: logger}
	if err := client.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("opened SQLite database", "path", path)
	return client, nil
}
