package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Assistant string `json:"assistant"`
	Sessions  int    `json:"sessions"`
}

// HandleHealth returns the health status of the service.
// Used as the liveness probe, so it answers 200 even when degraded.
func (h *Handler) HandleHealth(c *gin.Context) {
	status, assistant := "healthy", "ready"
	if !h.ready() {
		status, assistant = "degraded", "unavailable"
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Assistant: assistant,
		Sessions:  h.sessions.Len(),
	})
}

// HandleReadiness returns whether the service is ready to accept traffic.
// Stricter than health: the generative backend must be configured.
func (h *Handler) HandleReadiness(c *gin.Context) {
	if !h.ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"reason": "generator_not_configured",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
