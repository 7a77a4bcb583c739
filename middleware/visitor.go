package middleware

import (
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"portfolio/api/models"
	"portfolio/api/tracking"
)

const (
	VisitorCookieName = "visitorId"
	// VisitorCookieMaxAge is 24 hours in seconds.
	VisitorCookieMaxAge = 24 * 60 * 60

	visitorIDKey = "visitor_id"
)

// VisitorTracking reads or stamps the visitorId cookie on every request and
// records page requests in the background. API and socket calls are not tracked.
func VisitorTracking(tracker *tracking.Tracker, secureCookie bool, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, _ := c.Cookie(VisitorCookieName)
		visitorID, fresh := tracker.Identify(cookie)
		if fresh {
			value, err := tracker.CookieValue(visitorID)
			if err != nil {
				logger.ErrorContext(c.Request.Context(), "failed to issue visitor cookie", "error", err)
			} else {
				c.SetSameSite(http.SameSiteLaxMode)
				c.SetCookie(VisitorCookieName, value, VisitorCookieMaxAge, "/", "", secureCookie, true)
			}
		}
		c.Set(visitorIDKey, visitorID)

		if isPageRequest(c.Request) {
			tracker.TrackPage(models.VisitRequest{
				VisitorID: visitorID,
				IPAddress: c.ClientIP(),
				UserAgent: c.Request.UserAgent(),
				Page:      c.Request.URL.Path,
			})
		}
		c.Next()
	}
}

// VisitorID returns the id resolved by VisitorTracking, or "".
func VisitorID(c *gin.Context) string {
	return c.GetString(visitorIDKey)
}

func isPageRequest(r *http.Request) bool {
	p := r.URL.Path
	switch {
	case strings.HasPrefix(p, "/api/"), p == "/api", p == "/ws":
		return false
	case strings.HasPrefix(p, "/assets/"), strings.HasPrefix(p, "/favicon"):
		return false
	case path.Ext(p) != "":
		return false
	}
	// Respect Do Not Track
	return r.Header.Get("DNT") != "1"
}
