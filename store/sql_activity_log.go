package store

import (
	"context"
	"database/sql"
	"time"

	"portfolio/api/database"
	"portfolio/api/models"
)

// SQLActivityLog persists entries in activity_logs and trims rows older than
// the newest capacity ids after each append. CountByType counts retained rows.
type SQLActivityLog struct {
	db       *sql.DB
	dialect  database.Dialect
	capacity int
	now      func() time.Time
}

func NewSQLActivityLog(client *database.DBClient, capacity int) *SQLActivityLog {
	if capacity <= 0 {
		capacity = 1000
	}
	return &SQLActivityLog{db: client.DB, dialect: client.Dialect, capacity: capacity, now: time.Now}
}

func (l *SQLActivityLog) Append(ctx context.Context, entry models.ActivityLogEntry) (models.ActivityLogEntry, error) {
	entry.Timestamp = l.now().UTC()

	query := l.dialect.Rebind(`
		INSERT INTO activity_logs (timestamp, activity, type, visitor_id, ip_address, user_agent, page, session_duration)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := l.db.QueryRowContext(ctx, query,
		entry.Timestamp,
		entry.Activity,
		string(entry.Type),
		nullString(entry.VisitorID),
		nullString(entry.IPAddress),
		nullString(entry.UserAgent),
		nullString(entry.Page),
		nullInt64(entry.SessionDuration),
	).Scan(&entry.ID)
	if err != nil {
		return models.ActivityLogEntry{}, unavailable("insert activity log", err)
	}

	if entry.ID > int64(l.capacity) {
		cutoff := entry.ID - int64(l.capacity)
		if _, err := l.db.ExecContext(ctx, l.dialect.Rebind(`DELETE FROM activity_logs WHERE id <= ?`), cutoff); err != nil {
			return entry, unavailable("trim activity log", err)
		}
	}
	return entry, nil
}

func (l *SQLActivityLog) Recent(ctx context.Context, limit int) ([]models.ActivityLogEntry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	rows, err := l.db.QueryContext(ctx, l.dialect.Rebind(`
		SELECT id, timestamp, activity, type, visitor_id, ip_address, user_agent, page, session_duration
		FROM activity_logs
		ORDER BY id DESC
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, unavailable("query recent activity", err)
	}
	defer rows.Close()

	results := make([]models.ActivityLogEntry, 0, limit)
	for rows.Next() {
		var (
			e                               models.ActivityLogEntry
			typ                             string
			visitorID, ipAddress, userAgent sql.NullString
			page                            sql.NullString
			sessionDuration                 sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Activity, &typ, &visitorID, &ipAddress, &userAgent, &page, &sessionDuration); err != nil {
			return nil, unavailable("scan activity log", err)
		}
		e.Timestamp = e.Timestamp.UTC()
		e.Type = models.ActivityType(typ)
		e.VisitorID = fromNullString(visitorID)
		e.IPAddress = fromNullString(ipAddress)
		e.UserAgent = fromNullString(userAgent)
		e.Page = fromNullString(page)
		e.SessionDuration = fromNullInt64(sessionDuration)
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate activity log", err)
	}
	return results, nil
}

func (l *SQLActivityLog) CountByType(ctx context.Context, t models.ActivityType) (int64, error) {
	var n int64
	err := l.db.QueryRowContext(ctx, l.dialect.Rebind(`SELECT COUNT(*) FROM activity_logs WHERE type = ?`), string(t)).Scan(&n)
	if err != nil {
		return 0, unavailable("count activity log", err)
	}
	return n, nil
}
