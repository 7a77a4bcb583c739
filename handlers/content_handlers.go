package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio/api/store"
	"portfolio/api/tracking"
)

type ContentHandlers struct {
	Content store.ContentStore
	Tracker *tracking.Tracker
	logger  *slog.Logger
}

func NewContentHandlers(content store.ContentStore, tracker *tracking.Tracker, logger *slog.Logger) *ContentHandlers {
	return &ContentHandlers{Content: content, Tracker: tracker, logger: logger}
}

func (h *ContentHandlers) GetProfile(c *gin.Context) {
	serveContent(h, c, h.Content.Profile, "Failed to fetch profile")
}

func (h *ContentHandlers) GetSkills(c *gin.Context) {
	serveContent(h, c, h.Content.Skills, "Failed to fetch skills")
}

func (h *ContentHandlers) GetExperience(c *gin.Context) {
	serveContent(h, c, h.Content.Experiences, "Failed to fetch experience")
}

func (h *ContentHandlers) GetProjects(c *gin.Context) {
	serveContent(h, c, h.Content.Projects, "Failed to fetch projects")
}

func (h *ContentHandlers) GetMetrics(c *gin.Context) {
	serveContent(h, c, h.Content.Metrics, "Failed to fetch metrics")
}

// serveContent reads from the content store, records the call in the activity
// log and only then writes the response, so the entry is visible to the next request.
func serveContent[T any](h *ContentHandlers, c *gin.Context, fetch func(context.Context) (T, error), failMessage string) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	data, err := fetch(ctx)
	if err != nil {
		respondError(c, h.logger, http.StatusInternalServerError, failMessage, err)
		return
	}

	h.Tracker.LogAPI(ctx, c.Request.Method, c.Request.URL.Path, http.StatusOK, time.Since(start))
	respondOK(c, data)
}
