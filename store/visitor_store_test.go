package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/api/models"
)

func TestMemoryVisitorRegistry_TrackCreatesThenUpdates(t *testing.T) {
	r := NewMemoryVisitorRegistry()
	ctx := context.Background()

	v, err := r.Track(ctx, models.VisitRequest{VisitorID: "v1", IPAddress: "10.0.0.1", UserAgent: "curl", Page: "/"})
	require.NoError(t, err)
	assert.Equal(t, "v1", v.VisitorID)
	assert.Equal(t, int64(1), v.VisitCount)
	assert.Equal(t, []string{"/"}, v.PagesVisited)
	assert.Equal(t, "true", v.IsActive)
	require.NotNil(t, v.IPAddress)
	assert.Equal(t, "10.0.0.1", *v.IPAddress)
	assert.Equal(t, v.FirstVisit, v.LastVisit)

	v2, err := r.Track(ctx, models.VisitRequest{VisitorID: "v1", Page: "/projects"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), v2.VisitCount)
	assert.Equal(t, []string{"/", "/projects"}, v2.PagesVisited)
	assert.Equal(t, v.FirstVisit, v2.FirstVisit)
	assert.False(t, v2.LastVisit.Before(v2.FirstVisit))
	require.NotNil(t, v2.IPAddress)
	assert.Equal(t, "10.0.0.1", *v2.IPAddress)

	total, active, err := r.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(1), active)
}

func TestMemoryVisitorRegistry_ReturnsCopies(t *testing.T) {
	r := NewMemoryVisitorRegistry()
	v, err := r.Track(context.Background(), models.VisitRequest{VisitorID: "v1", Page: "/"})
	require.NoError(t, err)
	v.PagesVisited[0] = "/mutated"

	got, err := r.Get(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, []string{"/"}, got.PagesVisited)
}

func TestMemoryVisitorRegistry_LastVisitNeverBeforeFirstVisit(t *testing.T) {
	r := NewMemoryVisitorRegistry()
	base := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return base }
	_, err := r.Track(context.Background(), models.VisitRequest{VisitorID: "v1", Page: "/"})
	require.NoError(t, err)

	// clock steps backwards
	r.now = func() time.Time { return base.Add(-time.Hour) }
	v, err := r.Touch(context.Background(), "v1", "/about")
	require.NoError(t, err)
	assert.Equal(t, base, v.FirstVisit)
	assert.Equal(t, base, v.LastVisit)

	r.now = func() time.Time { return base.Add(time.Minute) }
	v, err = r.Touch(context.Background(), "v1", "")
	require.NoError(t, err)
	assert.Equal(t, base.Add(time.Minute), v.LastVisit)
	assert.Equal(t, []string{"/", "/about"}, v.PagesVisited)
}

func TestMemoryVisitorRegistry_UnknownVisitor(t *testing.T) {
	r := NewMemoryVisitorRegistry()
	_, err := r.Touch(context.Background(), "nobody", "/")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = r.End(context.Background(), "nobody")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = r.Get(context.Background(), "nobody")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryVisitorRegistry_EndAndActive(t *testing.T) {
	r := NewMemoryVisitorRegistry()
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		_, err := r.Track(ctx, models.VisitRequest{VisitorID: id, Page: "/"})
		require.NoError(t, err)
	}

	v, err := r.End(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "false", v.IsActive)

	active, err := r.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "a", active[0].VisitorID)
	assert.Equal(t, "c", active[1].VisitorID)

	total, activeCount, err := r.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(2), activeCount)

	// a new tracked request reactivates the visitor
	v, err = r.Track(ctx, models.VisitRequest{VisitorID: "b", Page: "/"})
	require.NoError(t, err)
	assert.Equal(t, "true", v.IsActive)
}
