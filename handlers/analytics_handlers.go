package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio/api/store"
	"portfolio/api/utils"
)

// ActivityAnalytics is served by store.AnalyticsStore when ClickHouse export is on.
type ActivityAnalytics interface {
	ActivityCountsOverTime(ctx context.Context, interval string, start, end time.Time, typeFilter string) ([]store.ActivityCountByTime, error)
	UniqueVisitorsOverTime(ctx context.Context, interval string, start, end time.Time) ([]store.ActivityCountByTime, error)
	TopPages(ctx context.Context, start, end time.Time, limit uint64) ([]store.TopPageResult, error)
}

type AnalyticsHandlers struct {
	Analytics ActivityAnalytics
	logger    *slog.Logger
}

func NewAnalyticsHandlers(analytics ActivityAnalytics, logger *slog.Logger) *AnalyticsHandlers {
	return &AnalyticsHandlers{Analytics: analytics, logger: logger}
}

func (h *AnalyticsHandlers) GetActivityCounts(c *gin.Context) {
	interval := c.DefaultQuery("interval", "Hour")
	if !utils.IsValidInterval(interval) {
		respondError(c, h.logger, http.StatusBadRequest, "Invalid 'interval' parameter. Use Minute, Hour, Day, Week, Month, Quarter or Year.", nil)
		return
	}
	start, end, err := parseTimeRange(c)
	if err != nil {
		respondError(c, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	results, err := h.Analytics.ActivityCountsOverTime(ctx, interval, start, end, c.Query("type"))
	if err != nil {
		respondError(c, h.logger, http.StatusInternalServerError, "Failed to retrieve activity statistics", err)
		return
	}
	respondOK(c, results)
}

func (h *AnalyticsHandlers) GetUniqueVisitors(c *gin.Context) {
	interval := c.DefaultQuery("interval", "Day")
	if !utils.IsValidInterval(interval) {
		respondError(c, h.logger, http.StatusBadRequest, "Invalid 'interval' parameter. Use Minute, Hour, Day, Week, Month, Quarter or Year.", nil)
		return
	}
	start, end, err := parseTimeRange(c)
	if err != nil {
		respondError(c, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	results, err := h.Analytics.UniqueVisitorsOverTime(ctx, interval, start, end)
	if err != nil {
		respondError(c, h.logger, http.StatusInternalServerError, "Failed to retrieve unique visitor statistics", err)
		return
	}
	respondOK(c, results)
}

func (h *AnalyticsHandlers) GetTopPages(c *gin.Context) {
	start, end, err := parseTimeRange(c)
	if err != nil {
		respondError(c, h.logger, http.StatusBadRequest, err.Error(), nil)
		return
	}

	var limit uint64 = 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || parsed == 0 {
			respondError(c, h.logger, http.StatusBadRequest, "Invalid 'limit' parameter. Must be a positive integer.", nil)
			return
		}
		limit = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	results, err := h.Analytics.TopPages(ctx, start, end, limit)
	if err != nil {
		respondError(c, h.logger, http.StatusInternalServerError, "Failed to retrieve top pages", err)
		return
	}
	respondOK(c, results)
}

// parseTimeRange reads RFC3339 start/end query parameters, defaulting to the last 7 days.
func parseTimeRange(c *gin.Context) (time.Time, time.Time, error) {
	end := time.Now().UTC()
	start := end.Add(-7 * 24 * time.Hour)

	if raw := c.Query("start"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("Invalid 'start' timestamp format. Use RFC3339 (e.g., 2006-01-02T15:04:05Z)")
		}
		start = t
	}
	if raw := c.Query("end"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("Invalid 'end' timestamp format. Use RFC3339 (e.g., 2006-01-02T15:04:05Z)")
		}
		end = t
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("'end' must not be before 'start'")
	}
	return start, end, nil
}
