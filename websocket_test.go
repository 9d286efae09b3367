package main

import (
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jukebox/types"
)

// readStateMessage reads one snapshot message with a deadline
func readStateMessage(t *testing.T, conn *websocket.Conn) types.StateMessage {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))

	var message types.StateMessage
	require.NoError(t, conn.ReadJSON(&message))
	return message
}

// waitForState reads messages until one matches or the deadline passes
func waitForState(t *testing.T, conn *websocket.Conn, match func(types.Snapshot) bool) types.Snapshot {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		message := readStateMessage(t, conn)
		if match(message.Snapshot) {
			return message.Snapshot
		}
	}
	t.Fatalf("no matching snapshot received")
	return types.Snapshot{}
}

// connectAndSync connects and waits until the hub has registered the client
func connectAndSync(t *testing.T, helper *TestHelper, clients int) *websocket.Conn {
	t.Helper()

	conn := helper.ConnectWebSocket(t, "/api/ws/state")
	message := readStateMessage(t, conn)
	require.Equal(t, "snapshot", message.Type)

	require.Eventually(t, func() bool {
		return helper.Hub.ClientCount() == clients
	}, 2*time.Second, 5*time.Millisecond)
	return conn
}

// TestWebSocketInitialSnapshot tests that a new client gets the current state
func TestWebSocketInitialSnapshot(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	conn := helper.ConnectWebSocket(t, "/api/ws/state")
	defer conn.Close()

	message := readStateMessage(t, conn)
	assert.Equal(t, "snapshot", message.Type)
	assert.Equal(t, 0, message.Snapshot.CurrentIndex)
	assert.Equal(t, types.StatusIdle, message.Snapshot.Status)
	assert.Nil(t, message.Snapshot.CurrentVolume)
	assert.False(t, message.Timestamp.IsZero())
}

// TestWebSocketBroadcastsPlayback tests that control requests reach listeners
func TestWebSocketBroadcastsPlayback(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	conn := connectAndSync(t, helper, 1)
	defer conn.Close()

	status, _ := helper.Control(t, "/api/play/2")
	require.Equal(t, http.StatusOK, status)

	snapshot := waitForState(t, conn, func(s types.Snapshot) bool {
		return s.CurrentIndex == 2 && s.Status == types.StatusPlaying
	})
	require.NotNil(t, snapshot.Track)
	assert.Equal(t, "Test Song 2", snapshot.Track.Title)

	status, _ = helper.Control(t, "/api/stop")
	require.Equal(t, http.StatusOK, status)

	snapshot = waitForState(t, conn, func(s types.Snapshot) bool {
		return s.Status == types.StatusIdle
	})
	assert.Equal(t, 2, snapshot.CurrentIndex)
}

// TestWebSocketBroadcastsVolume tests that volume changes reach listeners
func TestWebSocketBroadcastsVolume(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	conn := connectAndSync(t, helper, 1)
	defer conn.Close()

	status, _ := helper.Control(t, "/api/volume/30")
	require.Equal(t, http.StatusOK, status)

	snapshot := waitForState(t, conn, func(s types.Snapshot) bool {
		return s.CurrentVolume != nil
	})
	assert.Equal(t, 30.0, *snapshot.CurrentVolume)
}

// TestWebSocketConcurrentConnections tests multiple simultaneous listeners
func TestWebSocketConcurrentConnections(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	numConnections := 3
	connections := make([]*websocket.Conn, numConnections)
	for i := 0; i < numConnections; i++ {
		connections[i] = connectAndSync(t, helper, i+1)
		defer connections[i].Close()
	}

	status, _ := helper.Control(t, "/api/play/3")
	require.Equal(t, http.StatusOK, status)

	for _, conn := range connections {
		snapshot := waitForState(t, conn, func(s types.Snapshot) bool {
			return s.CurrentIndex == 3
		})
		assert.Equal(t, types.StatusPlaying, snapshot.Status)
	}
}

// TestWebSocketConnectionCleanup tests that closed clients are unregistered
func TestWebSocketConnectionCleanup(t *testing.T) {
	helper := NewTestHelper(t)
	defer helper.Cleanup(t)

	conn := connectAndSync(t, helper, 1)

	err := conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	require.NoError(t, err)
	conn.Close()

	assert.Eventually(t, func() bool {
		return helper.Hub.ClientCount() == 0
	}, 2*time.Second, 10*time.Millisecond)

	// The server keeps working after a client leaves
	status, _ := helper.Control(t, "/api/next")
	assert.Equal(t, http.StatusOK, status)
}
