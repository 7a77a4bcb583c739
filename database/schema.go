package database

import (
	"fmt"
	"strconv"
	"strings"
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Rebind rewrites '?' placeholders into the dialect's form.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (d Dialect) serial() string {
	if d == Postgres {
		return "BIGSERIAL PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}

// Array-valued columns are stored as JSON text so both dialects share one schema.
func (d Dialect) schema() []string {
	id := d.serial()
	return []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			id ` + id + `,
			name TEXT NOT NULL,
			role TEXT NOT NULL,
			company TEXT NOT NULL,
			location TEXT NOT NULL,
			email TEXT NOT NULL,
			github TEXT NOT NULL,
			linkedin TEXT NOT NULL,
			leetcode TEXT,
			phone TEXT,
			experience_years INTEGER NOT NULL,
			specialization TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS skills (
			id ` + id + `,
			category TEXT NOT NULL,
			technologies TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS experiences (
			id ` + id + `,
			company TEXT NOT NULL,
			role TEXT NOT NULL,
			duration TEXT NOT NULL,
			location TEXT NOT NULL,
			achievements TEXT NOT NULL,
			technologies TEXT NOT NULL,
			start_date TEXT NOT NULL,
			end_date TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			id ` + id + `,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			github_url TEXT,
			technologies TEXT NOT NULL,
			code_preview TEXT,
			year INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS metrics (
			id ` + id + `,
			category TEXT NOT NULL,
			metric TEXT NOT NULL,
			value TEXT NOT NULL,
			description TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS activity_logs (
			id ` + id + `,
			timestamp TIMESTAMP NOT NULL,
			activity TEXT NOT NULL,
			type TEXT NOT NULL,
			visitor_id TEXT,
			ip_address TEXT,
			user_agent TEXT,
			page TEXT,
			session_duration INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_logs_type ON activity_logs (type)`,
		`CREATE TABLE IF NOT EXISTS visitors (
			id ` + id + `,
			visitor_id TEXT NOT NULL UNIQUE,
			ip_address TEXT,
			user_agent TEXT,
			first_visit TIMESTAMP NOT NULL,
			last_visit TIMESTAMP NOT NULL,
			visit_count INTEGER NOT NULL DEFAULT 1,
			pages_visited TEXT NOT NULL DEFAULT '[]',
			is_active TEXT NOT NULL DEFAULT 'true'
		)`,
	}
}

// Migrate creates missing tables. It is idempotent.
func (c *DBClient) Migrate() error {
	for _, stmt := range c.Dialect.schema() {
		if _, err := c.DB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema (%s): %w", c.Dialect, err)
		}
	}
	return nil
}
