package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	stateRoot string
}

// NewHealthHandler creates a health handler checking the state root.
func NewHealthHandler(stateRoot string) *HealthHandler {
	return &HealthHandler{stateRoot: stateRoot}
}

// HealthCheck handles GET /health.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ReadinessCheck handles GET /ready: the gateway is ready when its state
// root exists and is a directory.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	info, err := os.Stat(h.stateRoot)
	if err != nil || !info.IsDir() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"reason": "state root missing",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

//Personal.AI order the ending
