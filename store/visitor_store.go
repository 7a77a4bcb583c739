package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"portfolio/api/models"
)

// MemoryVisitorRegistry is a mutex-guarded map keyed by visitorId.
// Returned visitors are copies.
type MemoryVisitorRegistry struct {
	mu       sync.RWMutex
	visitors map[string]*models.Visitor
	nextID   int64
	now      func() time.Time
}

func NewMemoryVisitorRegistry() *MemoryVisitorRegistry {
	return &MemoryVisitorRegistry{
		visitors: make(map[string]*models.Visitor),
		nextID:   1,
		now:      time.Now,
	}
}

func (r *MemoryVisitorRegistry) Track(ctx context.Context, req models.VisitRequest) (*models.Visitor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	v, ok := r.visitors[req.VisitorID]
	if !ok {
		v = &models.Visitor{
			ID:           r.nextID,
			VisitorID:    req.VisitorID,
			IPAddress:    models.StringPtr(req.IPAddress),
			UserAgent:    models.StringPtr(req.UserAgent),
			FirstVisit:   now,
			LastVisit:    now,
			VisitCount:   1,
			PagesVisited: []string{},
			IsActive:     "true",
		}
		r.nextID++
		if req.Page != "" {
			v.PagesVisited = append(v.PagesVisited, req.Page)
		}
		r.visitors[req.VisitorID] = v
		return v.Clone(), nil
	}

	touch(v, now, req.Page)
	v.VisitCount++
	v.IsActive = "true"
	if req.IPAddress != "" {
		v.IPAddress = models.StringPtr(req.IPAddress)
	}
	if req.UserAgent != "" {
		v.UserAgent = models.StringPtr(req.UserAgent)
	}
	return v.Clone(), nil
}

func (r *MemoryVisitorRegistry) Touch(ctx context.Context, visitorID, page string) (*models.Visitor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.visitors[visitorID]
	if !ok {
		return nil, ErrNotFound
	}
	touch(v, r.now().UTC(), page)
	return v.Clone(), nil
}

func (r *MemoryVisitorRegistry) End(ctx context.Context, visitorID string) (*models.Visitor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.visitors[visitorID]
	if !ok {
		return nil, ErrNotFound
	}
	v.IsActive = "false"
	return v.Clone(), nil
}

func (r *MemoryVisitorRegistry) Get(ctx context.Context, visitorID string) (*models.Visitor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.visitors[visitorID]
	if !ok {
		return nil, ErrNotFound
	}
	return v.Clone(), nil
}

// Active returns active visitors ordered by first sight.
func (r *MemoryVisitorRegistry) Active(ctx context.Context) ([]models.Visitor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Visitor, 0, len(r.visitors))
	for _, v := range r.visitors {
		if v.IsActive == "true" {
			out = append(out, *v.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryVisitorRegistry) Counts(ctx context.Context) (int64, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var active int64
	for _, v := range r.visitors {
		if v.IsActive == "true" {
			active++
		}
	}
	return int64(len(r.visitors)), active, nil
}

// touch only moves lastVisit forward, so lastVisit >= firstVisit holds even if
// the wall clock steps back.
func touch(v *models.Visitor, now time.Time, page string) {
	if now.After(v.LastVisit) {
		v.LastVisit = now
	}
	if page != "" {
		v.PagesVisited = append(v.PagesVisited, page)
	}
}
