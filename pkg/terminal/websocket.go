package terminal

import (
	"errors"
	"time"

	"github.com/flivyn/flivynterm/pkg/configuration"
	"github.com/flivyn/flivynterm/pkg/logger"
	"github.com/flivyn/flivynterm/pkg/metrics"
	"github.com/flivyn/flivynterm/pkg/resources"
	"github.com/flivyn/flivynterm/pkg/shared"

	"github.com/gorilla/websocket"
)

// Network settings come from the [Network] section.
type networkConfig struct {
	writeWait      time.Duration
	pongWait       time.Duration
	pingPeriod     time.Duration
	maxMessageSize int64
	sendBuffer     int
}

func networkFromConfig() networkConfig {
	pongWait := configuration.GetDuration("Network", "pong_timeout", 90*time.Second)
	sendBuffer := configuration.GetInt("Network", "max_channel_buffer", 256)
	if sendBuffer < 16 {
		sendBuffer = 16
	}
	return networkConfig{
		writeWait:      configuration.GetDuration("Network", "write_wait_timeout", 10*time.Second),
		pongWait:       pongWait,
		pingPeriod:     (pongWait * 9) / 10,
		maxMessageSize: int64(configuration.GetInt("Network", "max_message_size_kb", 64) * 1024),
		sendBuffer:     sendBuffer,
	}
}

// readPump feeds client frames into the session until the connection
// drops, then tears the client down.
func (c *Client) readPump() {
	net := c.handler.network
	defer c.handler.disconnect(c)

	c.conn.SetReadLimit(net.maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(net.pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(net.pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				logger.WebSocketWarn("Unexpected close for session %s: %v", c.sessionID, err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(net.pongWait))
		metrics.RecordWebSocketMessage("in")

		if err := c.handler.registry.CheckMessage(c.sessionID); err != nil {
			if errors.Is(err, resources.ErrRateLimited) {
				logger.WebSocketWarn("%v", err)
				c.Emit(shared.Message{Type: shared.MessageTypeError, Content: "rate limit exceeded"})
				continue
			}
			logger.WebSocketWarn("Dropping connection: %v", err)
			return
		}

		ev, err := DecodeFrame(data, int(net.maxMessageSize))
		if err != nil {
			logger.WebSocketWarn("Rejected frame from session %s: %v", c.sessionID, err)
			c.Emit(shared.Message{Type: shared.MessageTypeError, Content: "invalid message"})
			continue
		}
		if ev == nil {
			continue
		}
		if !c.session.Post(ev) {
			return
		}
	}
}

// writePump sends queued frames and pings. A closed send channel means the
// session asked to close: the close frame goes out after everything queued.
func (c *Client) writePump() {
	net := c.handler.network
	ticker := time.NewTicker(net.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(net.writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.WebSocketDebug("Write to session %s failed: %v", c.sessionID, err)
				return
			}
			metrics.RecordWebSocketMessage("out")
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(net.writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.WebSocketDebug("Ping to session %s failed: %v", c.sessionID, err)
				return
			}
		}
	}
}
