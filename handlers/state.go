package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"jukebox/types"
	"jukebox/websocket"
)

// stateUpgrader accepts any origin: remote control apps are served from elsewhere
var stateUpgrader = gorilla.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// StateHandler pushes snapshots over WebSocket
type StateHandler struct {
	hub      websocket.Hub
	snapshot func() types.Snapshot
}

// NewStateHandler creates a new state handler
func NewStateHandler(hub websocket.Hub, snapshot func() types.Snapshot) *StateHandler {
	return &StateHandler{
		hub:      hub,
		snapshot: snapshot,
	}
}

// HandleWebSocketConnection sends the current snapshot, then every change
func (h *StateHandler) HandleWebSocketConnection(c *gin.Context) {
	conn, err := stateUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn)
	client.Queue(websocket.NewStateMessage(h.snapshot()))
	h.hub.RegisterClient(client)

	client.StartPumps()
}
