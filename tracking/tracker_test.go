package tracking

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/api/logs"
	"portfolio/api/models"
	"portfolio/api/store"
	"portfolio/api/utils"
)

type captureExporter struct {
	mu      sync.Mutex
	entries []models.ActivityLogEntry
}

func (c *captureExporter) Offer(entry models.ActivityLogEntry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry)
	return true
}

func newTestTracker(t *testing.T, opts Options) (*Tracker, *store.MemoryActivityLog, *store.MemoryVisitorRegistry) {
	t.Helper()
	tokens, err := utils.NewVisitorTokens("test-secret", 24*time.Hour)
	require.NoError(t, err)
	activity := store.NewMemoryActivityLog(100)
	visitors := store.NewMemoryVisitorRegistry()
	return New(activity, visitors, tokens, logs.Discard(), opts), activity, visitors
}

func TestIdentify_RoundTripsCookie(t *testing.T) {
	tr, _, _ := newTestTracker(t, Options{})

	id, fresh := tr.Identify("")
	require.True(t, fresh)

	cookie, err := tr.CookieValue(id)
	require.NoError(t, err)

	again, fresh := tr.Identify(cookie)
	assert.False(t, fresh)
	assert.Equal(t, id, again)
}

func TestTrackPage_RecordsVisitorEntry(t *testing.T) {
	exp := &captureExporter{}
	tr, activity, visitors := newTestTracker(t, Options{Exporter: exp})
	ctx := context.Background()

	tr.TrackPage(models.VisitRequest{VisitorID: "abcdef123456", IPAddress: "10.0.0.1", UserAgent: "test-agent", Page: "/"})
	tr.TrackPage(models.VisitRequest{VisitorID: "abcdef123456", Page: "/projects"})
	tr.Wait()

	v, err := visitors.Get(ctx, "abcdef123456")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v.VisitCount)
	assert.ElementsMatch(t, []string{"/", "/projects"}, v.PagesVisited)
	assert.False(t, v.LastVisit.Before(v.FirstVisit))

	entries, err := activity.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, models.ActivityVisitor, e.Type)
		assert.Contains(t, e.Activity, "Visitor abcdef12... visited /")
	}
	assert.Len(t, exp.entries, 2)
}

func TestTrackPage_HashesAddresses(t *testing.T) {
	hasher, err := utils.NewIPHasher()
	require.NoError(t, err)
	tr, _, visitors := newTestTracker(t, Options{Hasher: hasher})

	tr.TrackPage(models.VisitRequest{VisitorID: "visitor-1", IPAddress: "203.0.113.9", Page: "/"})
	tr.Wait()

	v, err := visitors.Get(context.Background(), "visitor-1")
	require.NoError(t, err)
	require.NotNil(t, v.IPAddress)
	assert.Equal(t, hasher.Hash("203.0.113.9"), *v.IPAddress)
}

func TestLogAPI_Message(t *testing.T) {
	tr, activity, _ := newTestTracker(t, Options{})
	ctx := context.Background()

	tr.LogAPI(ctx, http.MethodGet, "/api/profile", http.StatusOK, 23*time.Millisecond)

	entries, err := activity.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "GET /api/profile - 200 OK - 23ms", entries[0].Activity)
	assert.Equal(t, models.ActivityAPI, entries[0].Type)
}

type failingLog struct{ store.ActivityLog }

func (failingLog) Append(context.Context, models.ActivityLogEntry) (models.ActivityLogEntry, error) {
	return models.ActivityLogEntry{}, store.ErrUnavailable
}

func TestLogAPI_SwallowsFailures(t *testing.T) {
	tokens, err := utils.NewVisitorTokens("", time.Hour)
	require.NoError(t, err)
	tr := New(failingLog{}, store.NewMemoryVisitorRegistry(), tokens, logs.Discard(), Options{})

	assert.NotPanics(t, func() {
		tr.LogAPI(context.Background(), http.MethodGet, "/api/skills", http.StatusOK, time.Millisecond)
	})

	_, err = tr.RecordSystem(context.Background(), "Cache hit ratio: 94.2%")
	assert.True(t, errors.Is(err, store.ErrUnavailable))
}

func TestUpdateActivity(t *testing.T) {
	tr, activity, visitors := newTestTracker(t, Options{})
	ctx := context.Background()

	_, err := visitors.Track(ctx, models.VisitRequest{VisitorID: "known-visitor", Page: "/"})
	require.NoError(t, err)

	v, err := tr.UpdateActivity(ctx, "known-visitor", "/skills")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, []string{"/", "/skills"}, v.PagesVisited)

	entries, err := activity.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Visitor known-vi... navigated to /skills", entries[0].Activity)
}

func TestUpdateActivity_UnknownVisitorIsNoop(t *testing.T) {
	tr, activity, _ := newTestTracker(t, Options{})
	ctx := context.Background()

	v, err := tr.UpdateActivity(ctx, "never-seen", "/skills")
	require.NoError(t, err)
	assert.Nil(t, v)

	entries, err := activity.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEndSession(t *testing.T) {
	tr, activity, visitors := newTestTracker(t, Options{})
	ctx := context.Background()

	_, err := visitors.Track(ctx, models.VisitRequest{VisitorID: "session-visitor", Page: "/"})
	require.NoError(t, err)
	tr.now = func() time.Time { return time.Now().Add(90 * time.Second) }

	require.NoError(t, tr.EndSession(ctx, "session-visitor"))

	v, err := visitors.Get(ctx, "session-visitor")
	require.NoError(t, err)
	assert.Equal(t, "false", v.IsActive)

	entries, err := activity.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Visitor session-... ended session", entries[0].Activity)
	require.NotNil(t, entries[0].SessionDuration)
	assert.InDelta(t, 90, *entries[0].SessionDuration, 1)
}

func TestEndSession_UnknownVisitorIsNoop(t *testing.T) {
	tr, activity, _ := newTestTracker(t, Options{})
	ctx := context.Background()

	require.NoError(t, tr.EndSession(ctx, "never-seen"))
	require.NoError(t, tr.EndSession(ctx, ""))

	entries, err := activity.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStats(t *testing.T) {
	tr, _, _ := newTestTracker(t, Options{})
	ctx := context.Background()

	tr.TrackPage(models.VisitRequest{VisitorID: "visitor-a", Page: "/"})
	tr.TrackPage(models.VisitRequest{VisitorID: "visitor-b", Page: "/"})
	tr.Wait()
	tr.TrackPage(models.VisitRequest{VisitorID: "visitor-a", Page: "/projects"})
	tr.Wait()
	require.NoError(t, tr.EndSession(ctx, "visitor-b"))
	tr.LogAPI(ctx, http.MethodGet, "/api/metrics", http.StatusOK, time.Millisecond)

	stats, err := tr.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalVisitors)
	assert.Equal(t, int64(1), stats.ActiveVisitors)
	// three page visits plus the session end entry
	assert.Equal(t, int64(4), stats.TotalVisits)

	active, err := tr.ActiveVisitors(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "visitor-a", active[0].VisitorID)
}
