package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jukebox/services"
	"jukebox/types"
)

// TrackHandler handles catalog listing and search endpoints
type TrackHandler struct {
	catalog *services.Catalog
}

// NewTrackHandler creates a new track handler
func NewTrackHandler(catalog *services.Catalog) *TrackHandler {
	return &TrackHandler{catalog: catalog}
}

// ListTracks returns the whole catalog in order
func (h *TrackHandler) ListTracks(c *gin.Context) {
	tracks := h.catalog.Tracks()
	indexed := make([]types.IndexedTrack, len(tracks))
	for i, track := range tracks {
		indexed[i] = types.IndexedTrack{Index: i, Track: track}
	}

	c.JSON(http.StatusOK, gin.H{
		"tracks": indexed,
		"count":  len(indexed),
	})
}

// Search finds tracks by title, artist or album
func (h *TrackHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "query parameter 'q' is required",
		})
		return
	}

	results := h.catalog.Search(query)
	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"results": results,
		"count":   len(results),
	})
}
