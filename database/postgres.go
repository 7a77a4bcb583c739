package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

// DBClient wraps a *sql.DB together with the dialect it speaks.
type DBClient struct {
	DB      *sql.DB
	Dialect Dialect
	logger  *slog.Logger
}

func NewPostgresDB(dbURL string, logger *slog.Logger) (*DBClient, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("postgres connection string is empty")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("error opening database connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Retry connection with backoff
	for i := 0; i < 5; i++ {
		err = db.Ping()
		if err == nil {
			break
		}
		logger.Warn("postgres ping failed", "attempt", i+1, "error", err)
		time.Sleep(time.Duration(i+1) * time.Second)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to the database (ping failed): %w", err)
	}

	client := &DBClient{DB: db, Dialect: Postgres, logger: logger}
	if err := client.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("connected to PostgreSQL database")
	return client, nil
}

func (c *DBClient) Close() {
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.logger.Error("error closing database connection", "dialect", c.Dialect, "error", err)
		} else {
			c.logger.Info("database connection closed", "dialect", c.Dialect)
		}
	}
}
