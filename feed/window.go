// Package feed is a client for the live activity feed: it keeps a rolling,
// de-duplicated window of messages and reconnects on its own.
package feed

import (
	"sync"

	"portfolio/api/models"
)

type messageKey struct {
	timestamp string
	message   string
}

// Window keeps the newest Size messages, newest first. A message whose
// (timestamp, message) pair is already in the window is ignored.
type Window struct {
	mu    sync.Mutex
	size  int
	items []models.RealtimeMessage
}

func NewWindow(size int) *Window {
	if size <= 0 {
		size = 3
	}
	return &Window{size: size, items: make([]models.RealtimeMessage, 0, size)}
}

// Add reports whether msg was new.
func (w *Window) Add(msg models.RealtimeMessage) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	key := messageKey{msg.Timestamp, msg.Message}
	for _, existing := range w.items {
		if (messageKey{existing.Timestamp, existing.Message}) == key {
			return false
		}
	}

	if len(w.items) < w.size {
		w.items = append(w.items, models.RealtimeMessage{})
	}
	copy(w.items[1:], w.items[:len(w.items)-1])
	w.items[0] = msg
	return true
}

// Messages returns a copy of the window, newest first.
func (w *Window) Messages() []models.RealtimeMessage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]models.RealtimeMessage(nil), w.items...)
}

func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items)
}
