package utils

import (
	"encoding/json"
	"sync"

	"lms/config"

	"github.com/gofiber/contrib/websocket"
)

// socketConn pairs a connection with its write lock. The websocket protocol
// allows only one concurrent writer per connection, and pushes can arrive
// from any goroutine.
type socketConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *socketConn) writeText(raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, raw)
}

// socketHub keeps the live websocket connections per user so graded results
// and notifications can be pushed without polling.
type socketHub struct {
	mu    sync.RWMutex
	conns map[uint][]*socketConn
}

var hub = &socketHub{conns: make(map[uint][]*socketConn)}

// RegisterSocket adds a user's connection to the hub
func RegisterSocket(userID uint, conn *websocket.Conn) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	hub.conns[userID] = append(hub.conns[userID], &socketConn{conn: conn})
}

// UnregisterSocket removes a closed connection
func UnregisterSocket(userID uint, conn *websocket.Conn) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	remaining := hub.conns[userID][:0]
	for _, c := range hub.conns[userID] {
		if c.conn != conn {
			remaining = append(remaining, c)
		}
	}
	if len(remaining) == 0 {
		delete(hub.conns, userID)
	} else {
		hub.conns[userID] = remaining
	}
}

// PushToUser sends a JSON payload to every open connection of the user.
// Write errors are logged only; a dead socket is cleaned up on its next read.
func PushToUser(userID uint, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		config.Log.Warnw("Failed to encode socket payload", "user_id", userID, "error", err)
		return
	}

	hub.mu.RLock()
	conns := append([]*socketConn(nil), hub.conns[userID]...)
	hub.mu.RUnlock()

	for _, sc := range conns {
		if err := sc.writeText(raw); err != nil {
			config.Log.Warnw("Failed to push socket message", "user_id", userID, "error", err)
		}
	}
}
