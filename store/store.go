// Package store holds the content store, the activity log and the visitor registry.
// Each has an in-memory implementation and a database/sql one.
package store

import (
	"context"
	"errors"

	"portfolio/api/models"
)

var (
	// ErrNotFound reports a referenced visitor or entity that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable wraps backend failures (database unreachable, query errors).
	ErrUnavailable = errors.New("store unavailable")
)

// DefaultRecentLimit is used when Recent is called with a non-positive limit.
const DefaultRecentLimit = 10

type ContentStore interface {
	Profile(ctx context.Context) (*models.Profile, error)
	Skills(ctx context.Context) ([]models.Skill, error)
	Experiences(ctx context.Context) ([]models.Experience, error)
	Projects(ctx context.Context) ([]models.Project, error)
	Metrics(ctx context.Context) ([]models.Metric, error)
}

// ActivityLog is append-only. Entries are never mutated after Append.
type ActivityLog interface {
	Append(ctx context.Context, entry models.ActivityLogEntry) (models.ActivityLogEntry, error)
	// Recent returns at most limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]models.ActivityLogEntry, error)
	CountByType(ctx context.Context, t models.ActivityType) (int64, error)
}

type VisitorRegistry interface {
	// Track creates the visitor on first sight, otherwise bumps lastVisit,
	// visitCount and appends the page.
	Track(ctx context.Context, req models.VisitRequest) (*models.Visitor, error)
	// Touch updates an existing visitor; ErrNotFound if unknown.
	Touch(ctx context.Context, visitorID, page string) (*models.Visitor, error)
	// End marks the visitor inactive; ErrNotFound if unknown.
	End(ctx context.Context, visitorID string) (*models.Visitor, error)
	Get(ctx context.Context, visitorID string) (*models.Visitor, error)
	Active(ctx context.Context) ([]models.Visitor, error)
	Counts(ctx context.Context) (total, active int64, err error)
}
