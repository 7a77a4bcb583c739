package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio/api/store"
	"portfolio/api/tracking"
	"portfolio/api/utils"
)

// MaxLogLimit caps ?limit= on /api/logs.
const MaxLogLimit = 500

type LogHandlers struct {
	Tracker *tracking.Tracker
	logger  *slog.Logger
}

func NewLogHandlers(tracker *tracking.Tracker, logger *slog.Logger) *LogHandlers {
	return &LogHandlers{Tracker: tracker, logger: logger}
}

// GetLogs returns the most recent activity entries, newest first.
func (h *LogHandlers) GetLogs(c *gin.Context) {
	limit := utils.ParseLimit(c.Query("limit"), store.DefaultRecentLimit, MaxLogLimit)

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	entries, err := h.Tracker.RecentLogs(ctx, limit)
	if err != nil {
		respondError(c, h.logger, http.StatusInternalServerError, "Failed to fetch activity logs", err)
		return
	}
	respondOK(c, entries)
}
