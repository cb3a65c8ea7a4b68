package terminal

import (
	"encoding/json"
	"sync"

	"github.com/flivyn/flivynterm/pkg/logger"
	"github.com/flivyn/flivynterm/pkg/session"
	"github.com/flivyn/flivynterm/pkg/shared"

	"github.com/gorilla/websocket"
)

// Client is one WebSocket connection and the session it hosts. It is the
// session's Host: frames the session emits are queued for writePump.
type Client struct {
	handler   *Handler
	conn      *websocket.Conn
	sessionID string
	ipAddress string
	session   *session.Session

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

var _ session.Host = (*Client)(nil)

// Emit queues msg for the client. A client that cannot keep up is
// disconnected instead of blocking the session.
func (c *Client) Emit(msg shared.Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error(logger.AreaTerminal, "Failed to marshal message type %d for %s: %v", msg.Type, c.sessionID, err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		logger.Warn(logger.AreaTerminal, "Send buffer full for session %s, disconnecting", c.sessionID)
		c.closeLocked()
	}
}

// Close flushes queued frames and closes the connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Client) closeLocked() {
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) PrivilegeChanged(admin bool) {
	if admin {
		logger.Info(logger.AreaTerminal, "Session %s (%s) switched to admin", c.sessionID, c.ipAddress)
		return
	}
	logger.Info(logger.AreaTerminal, "Session %s (%s) switched back to guest", c.sessionID, c.ipAddress)
}

// expire ends the session from outside, e.g. after an idle sweep.
func (c *Client) expire() {
	if c.session != nil {
		c.session.Close()
	}
	c.Close()
}

// ClientManager maps session IDs to their live connection.
type ClientManager struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewClientManager() *ClientManager {
	return &ClientManager{clients: make(map[string]*Client)}
}

// Add registers c and returns the connection it replaced, if any.
func (cm *ClientManager) Add(sessionID string, c *Client) *Client {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	prev := cm.clients[sessionID]
	cm.clients[sessionID] = c
	return prev
}

// Remove drops c if it is still the current connection for sessionID.
func (cm *ClientManager) Remove(sessionID string, c *Client) bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.clients[sessionID] != c {
		return false
	}
	delete(cm.clients, sessionID)
	return true
}

func (cm *ClientManager) Count() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.clients)
}

// CloseAll ends every connected session.
func (cm *ClientManager) CloseAll() {
	cm.mu.RLock()
	clients := make([]*Client, 0, len(cm.clients))
	for _, c := range cm.clients {
		clients = append(clients, c)
	}
	cm.mu.RUnlock()

	for _, c := range clients {
		c.expire()
	}
}
