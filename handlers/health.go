package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"jukebox/services"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	catalog *services.Catalog
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(catalog *services.Catalog) *HealthHandler {
	return &HealthHandler{catalog: catalog}
}

// HealthCheck returns the health status of the service
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "jukebox",
		"version":   "1.0.0",
		"timestamp": time.Now().Unix(),
	})
}

// APIStatus returns the status of the API
func (h *HealthHandler) APIStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":     "Jukebox API is running",
		"source_path": h.catalog.Root(),
		"tracks":      h.catalog.Len(),
	})
}
