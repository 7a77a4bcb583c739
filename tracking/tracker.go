// Package tracking ties the visitor registry and the activity log together.
// One Tracker is built at start-up and shared by every handler and connection.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"portfolio/api/models"
	"portfolio/api/store"
	"portfolio/api/utils"
)

// Exporter receives every appended entry; it must not block.
type Exporter interface {
	Offer(entry models.ActivityLogEntry) bool
}

type Options struct {
	// Hasher, when set, replaces client addresses before they are stored.
	Hasher   *utils.IPHasher
	Exporter Exporter
	// BackgroundTimeout bounds each fire-and-forget page tracking task.
	BackgroundTimeout time.Duration
}

type Tracker struct {
	activity store.ActivityLog
	visitors store.VisitorRegistry
	tokens   *utils.VisitorTokens
	hasher   *utils.IPHasher
	exporter Exporter
	logger   *slog.Logger
	now      func() time.Time

	bgTimeout time.Duration
	wg        sync.WaitGroup
}

func New(activity store.ActivityLog, visitors store.VisitorRegistry, tokens *utils.VisitorTokens, logger *slog.Logger, opts Options) *Tracker {
	if opts.BackgroundTimeout <= 0 {
		opts.BackgroundTimeout = 5 * time.Second
	}
	return &Tracker{
		activity:  activity,
		visitors:  visitors,
		tokens:    tokens,
		hasher:    opts.Hasher,
		exporter:  opts.Exporter,
		logger:    logger.With("component", "tracking"),
		now:       time.Now,
		bgTimeout: opts.BackgroundTimeout,
	}
}

// Identify returns the visitor id carried by a valid cookie or a new one.
func (t *Tracker) Identify(cookieValue string) (visitorID string, fresh bool) {
	return t.tokens.Identify(cookieValue)
}

// CookieValue signs visitorID for the visitorId cookie.
func (t *Tracker) CookieValue(visitorID string) (string, error) {
	return t.tokens.Issue(visitorID)
}

// Record appends entry to the activity log and offers the stored entry to the exporter.
func (t *Tracker) Record(ctx context.Context, entry models.ActivityLogEntry) (models.ActivityLogEntry, error) {
	stored, err := t.activity.Append(ctx, entry)
	if err != nil {
		return models.ActivityLogEntry{}, fmt.Errorf("append %s activity: %w", entry.Type, err)
	}
	if t.exporter != nil {
		t.exporter.Offer(stored)
	}
	return stored, nil
}

// RecordSystem stores a synthetic system status message.
func (t *Tracker) RecordSystem(ctx context.Context, message string) (models.ActivityLogEntry, error) {
	return t.Record(ctx, models.ActivityLogEntry{Activity: message, Type: models.ActivitySystem})
}

// LogAPI records one served API call. Failures are logged, never returned.
func (t *Tracker) LogAPI(ctx context.Context, method, path string, status int, latency time.Duration) {
	msg := fmt.Sprintf("%s %s - %d %s - %dms", method, path, status, http.StatusText(status), latency.Milliseconds())
	if _, err := t.Record(ctx, models.ActivityLogEntry{Activity: msg, Type: models.ActivityAPI}); err != nil {
		t.logger.ErrorContext(ctx, "failed to record api activity", "path", path, "error", err)
	}
}

// TrackPage records a page visit in the background. The caller never waits
// for it and never sees its errors.
func (t *Tracker) TrackPage(req models.VisitRequest) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), t.bgTimeout)
		defer cancel()
		if _, err := t.trackPage(ctx, req); err != nil {
			t.logger.Error("failed to track visitor", "visitor_id", utils.ShortID(req.VisitorID), "page", req.Page, "error", err)
		}
	}()
}

func (t *Tracker) trackPage(ctx context.Context, req models.VisitRequest) (*models.Visitor, error) {
	if req.VisitorID == "" {
		return nil, errors.New("empty visitor id")
	}
	req.IPAddress = t.maskIP(req.IPAddress)

	visitor, err := t.visitors.Track(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("track visitor: %w", err)
	}

	_, err = t.Record(ctx, models.ActivityLogEntry{
		Activity:  fmt.Sprintf("Visitor %s... visited %s", utils.ShortID(req.VisitorID), req.Page),
		Type:      models.ActivityVisitor,
		VisitorID: models.StringPtr(req.VisitorID),
		IPAddress: models.StringPtr(req.IPAddress),
		UserAgent: models.StringPtr(req.UserAgent),
		Page:      models.StringPtr(req.Page),
	})
	return visitor, err
}

// UpdateActivity moves a known visitor to page. Unknown visitors are ignored:
// the result is nil with no error and nothing is recorded.
func (t *Tracker) UpdateActivity(ctx context.Context, visitorID, page string) (*models.Visitor, error) {
	if visitorID == "" {
		return nil, nil
	}
	visitor, err := t.visitors.Touch(ctx, visitorID, page)
	if errors.Is(err, store.ErrNotFound) {
		t.logger.DebugContext(ctx, "activity for unknown visitor ignored", "visitor_id", utils.ShortID(visitorID))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update visitor activity: %w", err)
	}

	_, err = t.Record(ctx, models.ActivityLogEntry{
		Activity:  fmt.Sprintf("Visitor %s... navigated to %s", utils.ShortID(visitorID), page),
		Type:      models.ActivityVisitor,
		VisitorID: models.StringPtr(visitorID),
		Page:      models.StringPtr(page),
	})
	if err != nil {
		t.logger.ErrorContext(ctx, "failed to record navigation", "visitor_id", utils.ShortID(visitorID), "error", err)
	}
	return visitor, nil
}

// EndSession marks a visitor inactive. Unknown visitors are a no-op.
func (t *Tracker) EndSession(ctx context.Context, visitorID string) error {
	if visitorID == "" {
		return nil
	}
	visitor, err := t.visitors.End(ctx, visitorID)
	if errors.Is(err, store.ErrNotFound) {
		t.logger.DebugContext(ctx, "end-session for unknown visitor ignored", "visitor_id", utils.ShortID(visitorID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("end visitor session: %w", err)
	}

	duration := int64(t.now().Sub(visitor.FirstVisit).Seconds())
	if duration < 0 {
		duration = 0
	}
	_, err = t.Record(ctx, models.ActivityLogEntry{
		Activity:        fmt.Sprintf("Visitor %s... ended session", utils.ShortID(visitorID)),
		Type:            models.ActivityVisitor,
		VisitorID:       models.StringPtr(visitorID),
		SessionDuration: &duration,
	})
	if err != nil {
		t.logger.ErrorContext(ctx, "failed to record session end", "visitor_id", utils.ShortID(visitorID), "error", err)
	}
	return nil
}

// Stats counts visitors in the registry and visitor entries in the activity log.
func (t *Tracker) Stats(ctx context.Context) (models.VisitorStats, error) {
	total, active, err := t.visitors.Counts(ctx)
	if err != nil {
		return models.VisitorStats{}, fmt.Errorf("count visitors: %w", err)
	}
	visits, err := t.activity.CountByType(ctx, models.ActivityVisitor)
	if err != nil {
		return models.VisitorStats{}, fmt.Errorf("count visits: %w", err)
	}
	return models.VisitorStats{TotalVisitors: total, ActiveVisitors: active, TotalVisits: visits}, nil
}

func (t *Tracker) ActiveVisitors(ctx context.Context) ([]models.Visitor, error) {
	return t.visitors.Active(ctx)
}

func (t *Tracker) RecentLogs(ctx context.Context, limit int) ([]models.ActivityLogEntry, error) {
	return t.activity.Recent(ctx, limit)
}

// Wait blocks until background tracking tasks have finished.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

func (t *Tracker) maskIP(ip string) string {
	if t.hasher == nil {
		return ip
	}
	return t.hasher.Hash(ip)
}
