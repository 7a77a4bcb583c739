package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"portfolio/api/database"
	"portfolio/api/utils"
)

// ActivityCountByTime is one bucket of an aggregated time series.
type ActivityCountByTime struct {
	Time  time.Time `json:"time"`
	Type  *string   `json:"type,omitempty"`
	Count uint64    `json:"count"`
}

type TopPageResult struct {
	Page  string `json:"page"`
	Count uint64 `json:"count"`
}

// AnalyticsStore answers aggregate questions over the activity entries
// exported to ClickHouse.
type AnalyticsStore struct {
	DB     *database.ClickHouseClient
	logger *slog.Logger
}

func NewAnalyticsStore(chClient *database.ClickHouseClient, logger *slog.Logger) *AnalyticsStore {
	return &AnalyticsStore{DB: chClient, logger: logger}
}

func (s *AnalyticsStore) ActivityCountsOverTime(ctx context.Context, interval string, start, end time.Time, typeFilter string) ([]ActivityCountByTime, error) {
	if !utils.IsValidInterval(interval) {
		return nil, fmt.Errorf("invalid interval: %s", interval)
	}

	args := []any{start, end}
	selectCols := fmt.Sprintf("toStartOf%s(timestamp) AS time_bucket, count() AS total", interval)
	groupByCols := "time_bucket"
	whereClause := "WHERE timestamp >= ? AND timestamp <= ?"
	orderByCols := "time_bucket ASC"
	filtered := typeFilter != ""
	if filtered {
		selectCols += ", type"
		groupByCols += ", type"
		whereClause += " AND type = ?"
		orderByCols += ", type ASC"
		args = append(args, typeFilter)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM activity_events
		%s
		GROUP BY %s
		ORDER BY %s
	`, selectCols, whereClause, groupByCols, orderByCols)

	rows, err := s.DB.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity counts over time: %w", err)
	}
	defer rows.Close()

	results := []ActivityCountByTime{}
	for rows.Next() {
		var (
			bucket time.Time
			count  uint64
			kind   string
			result ActivityCountByTime
		)
		if filtered {
			if err := rows.Scan(&bucket, &count, &kind); err != nil {
				s.logger.Error("error scanning activity count row", "error", err)
				continue
			}
			result.Type = &kind
		} else if err := rows.Scan(&bucket, &count); err != nil {
			s.logger.Error("error scanning activity count row", "error", err)
			continue
		}
		result.Time = bucket
		result.Count = count
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during activity counts query: %w", err)
	}
	return results, nil
}

func (s *AnalyticsStore) UniqueVisitorsOverTime(ctx context.Context, interval string, start, end time.Time) ([]ActivityCountByTime, error) {
	if !utils.IsValidInterval(interval) {
		return nil, fmt.Errorf("invalid interval: %s", interval)
	}

	query := fmt.Sprintf(`
		SELECT toStartOf%s(timestamp) AS time_bucket, uniq(visitor_id) AS unique_visitors
		FROM activity_events
		WHERE type = 'visitor' AND visitor_id IS NOT NULL AND timestamp >= ? AND timestamp <= ?
		GROUP BY time_bucket
		ORDER BY time_bucket ASC
	`, interval)

	rows, err := s.DB.Conn.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query unique visitors over time: %w", err)
	}
	defer rows.Close()

	results := []ActivityCountByTime{}
	for rows.Next() {
		var bucket time.Time
		var visitors uint64
		if err := rows.Scan(&bucket, &visitors); err != nil {
			s.logger.Error("error scanning unique visitors row", "error", err)
			continue
		}
		results = append(results, ActivityCountByTime{Time: bucket, Count: visitors})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for unique visitors: %w", err)
	}
	return results, nil
}

func (s *AnalyticsStore) TopPages(ctx context.Context, start, end time.Time, limit uint64) ([]TopPageResult, error) {
	if limit == 0 {
		limit = 10
	}

	rows, err := s.DB.Conn.Query(ctx, `
		SELECT assumeNotNull(page) AS page_path, count() AS views
		FROM activity_events
		WHERE type = 'visitor' AND page IS NOT NULL AND timestamp >= ? AND timestamp <= ?
		GROUP BY page_path
		ORDER BY views DESC
		LIMIT ?
	`, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top pages: %w", err)
	}
	defer rows.Close()

	results := []TopPageResult{}
	for rows.Next() {
		var page string
		var count uint64
		if err := rows.Scan(&page, &count); err != nil {
			s.logger.Error("error scanning top pages row", "error", err)
			continue
		}
		results = append(results, TopPageResult{Page: page, Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for top pages: %w", err)
	}
	return results, nil
}
