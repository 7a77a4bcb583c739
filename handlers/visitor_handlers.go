package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio/api/middleware"
	"portfolio/api/models"
	"portfolio/api/tracking"
)

type VisitorHandlers struct {
	Tracker *tracking.Tracker
	logger  *slog.Logger
}

func NewVisitorHandlers(tracker *tracking.Tracker, logger *slog.Logger) *VisitorHandlers {
	return &VisitorHandlers{Tracker: tracker, logger: logger}
}

func (h *VisitorHandlers) GetActive(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	visitors, err := h.Tracker.ActiveVisitors(ctx)
	if err != nil {
		respondError(c, h.logger, http.StatusInternalServerError, "Failed to fetch active visitors", err)
		return
	}
	respondOK(c, visitors)
}

func (h *VisitorHandlers) GetStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	stats, err := h.Tracker.Stats(ctx)
	if err != nil {
		respondError(c, h.logger, http.StatusInternalServerError, "Failed to fetch visitor stats", err)
		return
	}
	respondOK(c, stats)
}

// UpdateActivity records navigation for the visitor in the body, or the
// cookie's visitor when the body carries none. Unknown visitors get data: null.
func (h *VisitorHandlers) UpdateActivity(c *gin.Context) {
	var req models.VisitorActivityRequest
	if !bindOptionalJSON(c, &req) {
		respondError(c, h.logger, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if req.VisitorID == "" {
		req.VisitorID = middleware.VisitorID(c)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	visitor, err := h.Tracker.UpdateActivity(ctx, req.VisitorID, req.Page)
	if err != nil {
		respondError(c, h.logger, http.StatusInternalServerError, "Failed to update visitor activity", err)
		return
	}
	respondOK(c, visitor)
}

// EndSession marks the visitor inactive. Ending an unknown session succeeds.
func (h *VisitorHandlers) EndSession(c *gin.Context) {
	var req models.EndSessionRequest
	if !bindOptionalJSON(c, &req) {
		respondError(c, h.logger, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if req.VisitorID == "" {
		req.VisitorID = middleware.VisitorID(c)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.Tracker.EndSession(ctx, req.VisitorID); err != nil {
		respondError(c, h.logger, http.StatusInternalServerError, "Failed to end visitor session", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": http.StatusOK, "message": "Session ended", "data": nil})
}

// bindOptionalJSON accepts an empty body; navigator.sendBeacon may post none.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	return err == nil || errors.Is(err, io.EOF)
}
