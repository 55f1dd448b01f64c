// internal/api/handlers/export_handler.go
package handlers

import (
	"net/http"

	"ride-marketplace-api-server/internal/api/middleware"
	"ride-marketplace-api-server/internal/rides"

	"github.com/gin-gonic/gin"
)

type ExportHandler struct {
	Svc      *rides.Service
	Uploader rides.SnapshotUploader
	Prefix   string
}

// ExportRides uploads a JSON snapshot of all rides to object storage.
func (h *ExportHandler) ExportRides(c *gin.Context) {
	snap, err := h.Svc.ExportSnapshot(c.Request.Context(), h.Uploader, h.Prefix)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.GetLogger(c).Info("ride snapshot exported", "key", snap.Key, "count", snap.Count)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Ride snapshot exported successfully",
		"url":     snap.URL,
		"key":     snap.Key,
		"count":   snap.Count,
	})
}
