// internal/api/handlers/health_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"ride-marketplace-api-server/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by *rides.Service.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	Store   Pinger
	Timeout time.Duration
}

func (h *HealthHandler) Root(c *gin.Context) {
	c.String(http.StatusOK, "Taxi Service API is running...")
}

// Health reports 503 when the ride store cannot be reached.
func (h *HealthHandler) Health(c *gin.Context) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	if err := h.Store.Ping(ctx); err != nil {
		middleware.GetLogger(c).Warn("store ping failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "message": "store unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
