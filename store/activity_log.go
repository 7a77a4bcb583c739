package store

import (
	"context"
	"sync"
	"time"

	"portfolio/api/models"
)

// MemoryActivityLog keeps the most recent capacity entries in a ring buffer.
// Per-type counters cover every entry ever appended, including evicted ones.
type MemoryActivityLog struct {
	mu       sync.Mutex
	entries  []models.ActivityLogEntry
	start    int // index of the oldest entry
	size     int
	nextID   int64
	counts   map[models.ActivityType]int64
	now      func() time.Time
	capacity int
}

func NewMemoryActivityLog(capacity int) *MemoryActivityLog {
	if capacity <= 0 {
		capacity = 1000
	}
	return &MemoryActivityLog{
		entries:  make([]models.ActivityLogEntry, capacity),
		nextID:   1,
		counts:   make(map[models.ActivityType]int64),
		now:      time.Now,
		capacity: capacity,
	}
}

func (l *MemoryActivityLog) Append(ctx context.Context, entry models.ActivityLogEntry) (models.ActivityLogEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry.ID = l.nextID
	l.nextID++
	entry.Timestamp = l.now().UTC()

	if l.size < l.capacity {
		l.entries[(l.start+l.size)%l.capacity] = entry
		l.size++
	} else {
		l.entries[l.start] = entry
		l.start = (l.start + 1) % l.capacity
	}
	l.counts[entry.Type]++

	return entry, nil
}

func (l *MemoryActivityLog) Recent(ctx context.Context, limit int) ([]models.ActivityLogEntry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if limit > l.size {
		limit = l.size
	}
	out := make([]models.ActivityLogEntry, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (l.start + l.size - 1 - i) % l.capacity
		out = append(out, l.entries[idx])
	}
	return out, nil
}

func (l *MemoryActivityLog) CountByType(ctx context.Context, t models.ActivityType) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[t], nil
}

// Len reports how many entries are currently retained.
func (l *MemoryActivityLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}
