// Package sinks exports activity log entries to external stores without
// blocking the request path.
package sinks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"portfolio/api/models"
)

// Sink receives batches of appended activity entries.
type Sink interface {
	Name() string
	Write(ctx context.Context, entries []models.ActivityLogEntry) error
	Close() error
}

type Options struct {
	Buffer        int
	BatchSize     int
	FlushInterval time.Duration
	MaxAttempts   int
	// RetryBackoff is multiplied by the attempt number between retries.
	RetryBackoff time.Duration
}

func (o *Options) withDefaults() {
	if o.Buffer <= 0 {
		o.Buffer = 256
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 50
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = 2 * time.Second
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 500 * time.Millisecond
	}
}

// Dispatcher queues entries in a bounded buffer and flushes them to every sink
// in batches. Offer never blocks: when the buffer is full the entry is dropped.
type Dispatcher struct {
	sinks  []Sink
	opts   Options
	queue  chan models.ActivityLogEntry
	logger *slog.Logger

	mu      sync.Mutex
	closed  bool
	dropped int64

	done chan struct{}
}

func NewDispatcher(logger *slog.Logger, opts Options, sinks ...Sink) *Dispatcher {
	opts.withDefaults()
	d := &Dispatcher{
		sinks:  sinks,
		opts:   opts,
		queue:  make(chan models.ActivityLogEntry, opts.Buffer),
		logger: logger.With("component", "sinks"),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

// Offer enqueues entry and reports whether it was accepted.
func (d *Dispatcher) Offer(entry models.ActivityLogEntry) bool {
	if len(d.sinks) == 0 {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	select {
	case d.queue <- entry:
		return true
	default:
		d.dropped++
		if d.dropped == 1 || d.dropped%100 == 0 {
			d.logger.Warn("export queue full, dropping activity entries", "dropped", d.dropped)
		}
		return false
	}
}

// Dropped reports how many entries were discarded because the queue was full.
func (d *Dispatcher) Dropped() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}

func (d *Dispatcher) run() {
	defer close(d.done)

	ticker := time.NewTicker(d.opts.FlushInterval)
	defer ticker.Stop()

	batch := make([]models.ActivityLogEntry, 0, d.opts.BatchSize)
	for {
		select {
		case entry, ok := <-d.queue:
			if !ok {
				d.flush(batch)
				return
			}
			batch = append(batch, entry)
			if len(batch) >= d.opts.BatchSize {
				d.flush(batch)
				batch = make([]models.ActivityLogEntry, 0, d.opts.BatchSize)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				d.flush(batch)
				batch = make([]models.ActivityLogEntry, 0, d.opts.BatchSize)
			}
		}
	}
}

func (d *Dispatcher) flush(batch []models.ActivityLogEntry) {
	if len(batch) == 0 {
		return
	}
	for _, sink := range d.sinks {
		if err := d.writeWithRetry(sink, batch); err != nil {
			d.logger.Error("export failed", "sink", sink.Name(), "entries", len(batch), "error", err)
		}
	}
}

func (d *Dispatcher) writeWithRetry(sink Sink, batch []models.ActivityLogEntry) error {
	var err error
	for attempt := 1; attempt <= d.opts.MaxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = sink.Write(ctx, batch)
		cancel()
		if err == nil {
			return nil
		}
		d.logger.Warn("export attempt failed", "sink", sink.Name(), "attempt", attempt, "max_attempts", d.opts.MaxAttempts, "error", err)
		if attempt < d.opts.MaxAttempts {
			time.Sleep(time.Duration(attempt) * d.opts.RetryBackoff)
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", d.opts.MaxAttempts, err)
}

// Close stops accepting entries, flushes what is queued and closes every sink.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.done

	var errs []error
	for _, sink := range d.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", sink.Name(), err))
		}
	}
	return errors.Join(errs...)
}
