// Package handlers implements the HTTP API on top of gin.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// requestTimeout bounds store calls made while serving one request.
const requestTimeout = 10 * time.Second

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"status": http.StatusOK, "data": data})
}

// respondError logs err and answers with a generic message only.
func respondError(c *gin.Context, logger *slog.Logger, status int, message string, err error) {
	if err != nil {
		logger.ErrorContext(c.Request.Context(), message, "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, gin.H{"message": message})
}
