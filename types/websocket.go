package types

import "time"

// StateMessage represents a WebSocket snapshot update message
type StateMessage struct {
	Type      string    `json:"type"` // "snapshot"
	Snapshot  Snapshot  `json:"snapshot"`
	Timestamp time.Time `json:"timestamp"`
}
