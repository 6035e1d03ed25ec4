package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/coder/websocket"
)

// SocketRegistry tracks the live WebSocket for each session. A session has at
// most one socket; a newer connection replaces the older one.
type SocketRegistry struct {
	mu     sync.RWMutex
	active map[string]*websocket.Conn
}

// NewSocketRegistry creates an empty registry.
func NewSocketRegistry() *SocketRegistry {
	return &SocketRegistry{active: make(map[string]*websocket.Conn)}
}

// Active returns the live connection for sessionID, or nil.
func (m *SocketRegistry) Active(sessionID string) *websocket.Conn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active[sessionID]
}

// Len returns the number of live sessions.
func (m *SocketRegistry) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.active)
}

// Register makes conn the live connection for sessionID, closing any
// previous one.
func (m *SocketRegistry) Register(sessionID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.active[sessionID]; ok && existing != conn {
		_ = existing.Close(websocket.StatusNormalClosure, "session replaced")
	}
	m.active[sessionID] = conn
	slog.Info("Chat socket registered", "session_id", sessionID)
}

// Unregister removes conn if it is still the live connection for sessionID.
func (m *SocketRegistry) Unregister(sessionID string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.active[sessionID]; ok && current == conn {
		delete(m.active, sessionID)
		slog.Info("Chat socket unregistered", "session_id", sessionID)
	}
}

// Send pushes v to the session's live socket, if any. Failures are logged.
func (m *SocketRegistry) Send(ctx context.Context, sessionID string, v interface{}) {
	conn := m.Active(sessionID)
	if conn == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("Failed to encode socket frame", "session_id", sessionID, "error", err)
		return
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		slog.Debug("Failed to push socket frame", "session_id", sessionID, "error", err)
	}
}

// CloseAll closes every live socket.
func (m *SocketRegistry) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for sid, conn := range m.active {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		delete(m.active, sid)
	}
}
