package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"jukebox/services"
	"jukebox/types"
)

// PlayerHandler handles playback and volume endpoints
type PlayerHandler struct {
	sequencer services.Sequencer
	volume    services.VolumeController
	catalog   *services.Catalog
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(seq services.Sequencer, vol services.VolumeController, catalog *services.Catalog) *PlayerHandler {
	return &PlayerHandler{
		sequencer: seq,
		volume:    vol,
		catalog:   catalog,
	}
}

// ControlResponse is the body of every control endpoint
type ControlResponse struct {
	types.Snapshot
	Error string `json:"error,omitempty"`
}

// PlayIndex plays the track at :index
func (h *PlayerHandler) PlayIndex(c *gin.Context) {
	raw := c.Param("index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		h.respond(c, fmt.Errorf("%w: %q is not an index", services.ErrIndexOutOfRange, raw))
		return
	}

	log.Info().Int("index", index).Msg("Play song request")
	h.respond(c, h.sequencer.PlayIndex(index))
}

// PlayCurrent restarts the current track
func (h *PlayerHandler) PlayCurrent(c *gin.Context) {
	log.Info().Msg("Play request")
	h.respond(c, h.sequencer.PlayCurrent())
}

// PlayPath plays the track whose base64 encoded relative path is :encoded
func (h *PlayerHandler) PlayPath(c *gin.Context) {
	path, err := DecodeTrackPath(c.Param("encoded"))
	if err != nil {
		h.respond(c, err)
		return
	}

	log.Info().Str("path", path).Msg("Play path request")
	h.respond(c, h.sequencer.PlayPath(path))
}

// Stop stops playback
func (h *PlayerHandler) Stop(c *gin.Context) {
	log.Info().Msg("Stop request")
	h.sequencer.Stop()
	h.respond(c, nil)
}

// Next plays the following track
func (h *PlayerHandler) Next(c *gin.Context) {
	log.Info().Msg("Next request")
	h.respond(c, h.sequencer.Next())
}

// Previous plays the preceding track
func (h *PlayerHandler) Previous(c *gin.Context) {
	log.Info().Msg("Previous request")
	h.respond(c, h.sequencer.Previous())
}

// Random plays a random track
func (h *PlayerHandler) Random(c *gin.Context) {
	log.Info().Msg("Random request")
	h.respond(c, h.sequencer.Random())
}

// Info returns the snapshot only
func (h *PlayerHandler) Info(c *gin.Context) {
	h.respond(c, nil)
}

// SetVolume sets the output volume to :volume percent and waits for the mixer
func (h *PlayerHandler) SetVolume(c *gin.Context) {
	percent, err := services.ParseVolume(c.Param("volume"))
	if err != nil {
		h.respond(c, err)
		return
	}

	log.Info().Float64("volume", percent).Msg("Volume request")
	h.respond(c, h.volume.SetVolume(c.Request.Context(), percent))
}

// Snapshot returns the current state
func (h *PlayerHandler) Snapshot() types.Snapshot {
	return services.TakeSnapshot(h.sequencer, h.volume, h.catalog)
}

func (h *PlayerHandler) respond(c *gin.Context, err error) {
	response := ControlResponse{Snapshot: h.Snapshot()}
	if err == nil {
		c.JSON(http.StatusOK, response)
		return
	}

	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("Control request failed")
	}
	response.Error = err.Error()
	c.JSON(status, response)
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrIndexOutOfRange),
		errors.Is(err, services.ErrSuspiciousRequest),
		errors.Is(err, services.ErrInvalidVolume):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrTrackNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrSequencerClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// EncodeTrackPath encodes a relative path for use as a URL segment
func EncodeTrackPath(path string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(path))
}

// DecodeTrackPath accepts padded or unpadded, standard or URL-safe base64
func DecodeTrackPath(encoded string) (string, error) {
	trimmed := strings.TrimRight(encoded, "=")
	for _, enc := range []*base64.Encoding{base64.RawURLEncoding, base64.RawStdEncoding} {
		if decoded, err := enc.DecodeString(trimmed); err == nil {
			return string(decoded), nil
		}
	}
	return "", fmt.Errorf("%w: path is not valid base64", services.ErrSuspiciousRequest)
}
