package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio/api/realtime"
)

type HealthHandlers struct {
	Environment string
}

func (h *HealthHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      http.StatusOK,
		"message":     "Portfolio API is running",
		"timestamp":   realtime.FormatTimestamp(time.Now()),
		"environment": h.Environment,
	})
}
