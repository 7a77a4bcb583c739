package sinks

import (
	"context"
	"fmt"
	"log/slog"

	"portfolio/api/database"
	"portfolio/api/models"
)

// ClickHouseSink appends activity entries to the activity_events table.
type ClickHouseSink struct {
	DB     *database.ClickHouseClient
	logger *slog.Logger
}

func NewClickHouseSink(chClient *database.ClickHouseClient, logger *slog.Logger) *ClickHouseSink {
	return &ClickHouseSink{DB: chClient, logger: logger}
}

func (s *ClickHouseSink) Name() string { return "clickhouse" }

func (s *ClickHouseSink) Write(ctx context.Context, entries []models.ActivityLogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO activity_events (
			id, timestamp, activity, type, visitor_id, ip_address, user_agent, page, session_duration
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}

	for _, e := range entries {
		err := batch.Append(
			e.ID,
			e.Timestamp,
			e.Activity,
			string(e.Type),
			e.VisitorID,
			e.IPAddress,
			e.UserAgent,
			e.Page,
			e.SessionDuration,
		)
		if err != nil {
			s.logger.Error("error appending activity entry to batch", "id", e.ID, "error", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	s.logger.Debug("inserted activity entries into ClickHouse", "count", len(entries))
	return nil
}

func (s *ClickHouseSink) Close() error {
	s.DB.Close()
	return nil
}
