package realtime

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"portfolio/api/models"
)

// Catalog is the fixed set of synthetic status lines a heartbeat picks from.
var Catalog = []string{
	"Database connection pool: 8/10 connections active",
	"Cache hit ratio: 94.2%",
	"Background job processed: email_notification",
	"API rate limit check: 45/100 requests",
	"Health check: All services operational",
	"Memory usage: 2.1GB / 4GB",
	"CPU utilization: 32%",
	"Active sessions: 12",
}

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type TickerFactory func(d time.Duration) Ticker

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()              { t.t.Stop() }

func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Recorder stores a system status line in the activity log.
type Recorder interface {
	RecordSystem(ctx context.Context, message string) (models.ActivityLogEntry, error)
}

type Heartbeat struct {
	interval  time.Duration
	recorder  Recorder
	newTicker TickerFactory
	pick      func(n int) int
	logger    *slog.Logger
	now       func() time.Time
}

func NewHeartbeat(interval time.Duration, recorder Recorder, logger *slog.Logger) *Heartbeat {
	return &Heartbeat{
		interval:  interval,
		recorder:  recorder,
		newTicker: NewTimeTicker,
		pick:      rand.IntN,
		logger:    logger,
		now:       time.Now,
	}
}

// WithTicker replaces the ticker source.
func (h *Heartbeat) WithTicker(f TickerFactory) *Heartbeat {
	h.newTicker = f
	return h
}

// Run emits one status line per tick until conn closes or ctx is done.
// The ticker is stopped on every return path.
func (h *Heartbeat) Run(ctx context.Context, conn *Conn) {
	ticker := h.newTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-conn.Done():
			return
		case <-ticker.C():
			if conn.State() != StateOpen {
				return
			}
			if err := h.beat(ctx, conn); err != nil {
				if !errors.Is(err, ErrClosed) {
					h.logger.Debug("heartbeat push failed", "conn_id", conn.ID, "transport", conn.Kind(), "error", err)
				}
				return
			}
		}
	}
}

func (h *Heartbeat) beat(ctx context.Context, conn *Conn) error {
	line := Catalog[h.pick(len(Catalog))]

	// a closed connection must not leave system entries behind
	if conn.State() != StateOpen {
		return ErrClosed
	}
	entry, err := h.recorder.RecordSystem(ctx, line)
	if err != nil {
		h.logger.Error("failed to record heartbeat", "conn_id", conn.ID, "error", err)
		entry = models.ActivityLogEntry{Activity: line, Type: models.ActivitySystem, Timestamp: h.now()}
	}
	return conn.Send(SystemActivityMessage(entry))
}
