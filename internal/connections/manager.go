package connections

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// TimeoutConfig holds the timeout settings for chat socket connections
type TimeoutConfig struct {
	PongWait   time.Duration
	PingPeriod time.Duration
	WriteWait  time.Duration
}

// DefaultTimeouts provides sensible default timeout values
var DefaultTimeouts = TimeoutConfig{
	PongWait:   30 * time.Second,
	PingPeriod: 27 * time.Second, // (PongWait * 9) / 10
	WriteWait:  10 * time.Second,
}

// Manager tracks live chat sockets and which browser session each belongs
// to, so health reporting can see how many widgets are connected.
type Manager struct {
	connections sync.Map // *websocket.Conn -> session id
	timeouts    TimeoutConfig
}

// NewManager creates a new connection manager with the specified timeouts
func NewManager(timeouts TimeoutConfig) *Manager {
	return &Manager{
		timeouts: timeouts,
	}
}

// Add registers a chat socket under its session id
func (m *Manager) Add(conn *websocket.Conn, sessionID string) {
	m.connections.Store(conn, sessionID)
}

// Remove drops a chat socket
func (m *Manager) Remove(conn *websocket.Conn) {
	m.connections.Delete(conn)
}

// Count returns the current number of live chat sockets
func (m *Manager) Count() int {
	count := 0
	m.connections.Range(func(key, value interface{}) bool {
		count++
		return true
	})
	return count
}

// Has checks if a specific chat socket is registered
func (m *Manager) Has(conn *websocket.Conn) bool {
	_, exists := m.connections.Load(conn)
	return exists
}

// SessionID returns the session a chat socket was registered under
func (m *Manager) SessionID(conn *websocket.Conn) (string, bool) {
	value, exists := m.connections.Load(conn)
	if !exists {
		return "", false
	}
	sessionID, ok := value.(string)
	return sessionID, ok
}

// Timeouts returns the timeout configuration
func (m *Manager) Timeouts() TimeoutConfig {
	return m.timeouts
}
