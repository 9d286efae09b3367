package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"jukebox/services"
	"jukebox/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageTemplate parses the embedded HTML templates
func PageTemplate() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}

// PageHandler serves the catalog page
type PageHandler struct {
	catalog *services.Catalog
}

// NewPageHandler creates a new page handler
func NewPageHandler(catalog *services.Catalog) *PageHandler {
	return &PageHandler{catalog: catalog}
}

// pageTrack is one page row; Encoded is the play-by-path URL segment
type pageTrack struct {
	Index   int
	Encoded string
	types.Track
}

// Index renders every track, with a header line at each album start
func (h *PageHandler) Index(c *gin.Context) {
	tracks := h.catalog.Tracks()
	rows := make([]pageTrack, len(tracks))
	for i, track := range tracks {
		rows[i] = pageTrack{Index: i, Encoded: EncodeTrackPath(track.RelativePath), Track: track}
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Tracks": rows,
		"Count":  len(rows),
	})
}
