package terminal

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/flivyn/flivynterm/pkg/auth"
	"github.com/flivyn/flivynterm/pkg/configuration"
	"github.com/flivyn/flivynterm/pkg/logger"
	"github.com/flivyn/flivynterm/pkg/resources"
	"github.com/flivyn/flivynterm/pkg/session"
	"github.com/flivyn/flivynterm/pkg/shared"
	"github.com/flivyn/flivynterm/pkg/shell"

	"github.com/gorilla/websocket"
)

// AuditRecorder is the part of the store the transport writes to.
type AuditRecorder interface {
	session.Recorder
	SessionOpened(sessionID, transport, ip string)
	SessionClosed(sessionID string)
}

// Options configure a Handler. Zero values fall back to the configuration.
type Options struct {
	Interpreter    *shell.Interpreter
	Recorder       AuditRecorder
	Registry       *resources.Registry
	Scheduler      session.Scheduler
	AllowedOrigins []string
	Theme          string
	GridSize       int
	TickInterval   time.Duration
	MaxLines       int
}

// OptionsFromConfig reads the terminal, snake, editor and WebSocket sections.
func OptionsFromConfig() Options {
	return Options{
		AllowedOrigins: splitList(configuration.GetString("WebSocket", "allowed_origins", "http://localhost:8080,http://127.0.0.1:8080")),
		Theme:          configuration.GetString("Terminal", "default_theme", "dark"),
		GridSize:       configuration.GetInt("Snake", "grid_size", 20),
		TickInterval:   configuration.GetDuration("Snake", "tick_interval", 150*time.Millisecond),
		MaxLines:       configuration.GetInt("Editor", "max_lines", 5000),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Handler serves /ws. Every connection hosts one terminal session.
type Handler struct {
	opts     Options
	network  networkConfig
	upgrader websocket.Upgrader
	registry *resources.Registry
	clients  *ClientManager

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHandler(opts Options) *Handler {
	if opts.Interpreter == nil {
		opts.Interpreter = shell.New()
	}
	if opts.Registry == nil {
		opts.Registry = resources.NewRegistry(resources.LimitsFromConfig())
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &Handler{
		opts:     opts,
		network:  networkFromConfig(),
		registry: opts.Registry,
		clients:  NewClientManager(),
		ctx:      ctx,
		cancel:   cancel,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  configuration.GetInt("WebSocket", "read_buffer_size", 4096),
		WriteBufferSize: configuration.GetInt("WebSocket", "write_buffer_size", 4096),
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// checkOrigin accepts only the configured origins; "*" accepts any.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logger.WebSocketWarn("WebSocket request without Origin header rejected")
		return false
	}
	for _, allowed := range h.opts.AllowedOrigins {
		if allowed == "*" || origin == allowed {
			return true
		}
	}
	logger.WebSocketWarn("WebSocket request from disallowed origin rejected: %s", origin)
	return false
}

// HandleWebSocket authenticates the token, upgrades the connection and runs
// a session on it until either side closes.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	tokenString, err := auth.ExtractTokenFromRequest(r)
	if err != nil {
		logger.AuthWarn("WebSocket request without token: %v", err)
		http.Error(w, "Unauthorized: token missing", http.StatusUnauthorized)
		return
	}
	claims, err := auth.ValidateGuestToken(tokenString)
	if err != nil {
		logger.AuthWarn("WebSocket request with invalid token: %v", err)
		http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
		return
	}

	client := &Client{
		handler:   h,
		sessionID: claims.SessionID,
		ipAddress: auth.ClientIP(r),
		send:      make(chan []byte, h.network.sendBuffer),
	}

	var rec session.Recorder
	if h.opts.Recorder != nil {
		rec = h.opts.Recorder
	}
	// The session exists before the registry can call client.expire.
	client.session = session.New(session.Config{
		ID:           client.sessionID,
		Interpreter:  h.opts.Interpreter,
		Host:         client,
		Recorder:     rec,
		Scheduler:    h.opts.Scheduler,
		Theme:        h.opts.Theme,
		GridSize:     h.opts.GridSize,
		TickInterval: h.opts.TickInterval,
		MaxLines:     h.opts.MaxLines,
	})

	if err := h.registry.Register(client.sessionID, client.ipAddress, client.expire); err != nil {
		logger.WebSocketWarn("Connection refused for %s: %v", client.ipAddress, err)
		status := http.StatusServiceUnavailable
		if errors.Is(err, resources.ErrTooManySessions) {
			status = http.StatusTooManyRequests
		}
		http.Error(w, "Too many sessions", status)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WebSocketError("WebSocket upgrade failed for %s: %v", client.ipAddress, err)
		h.registry.Unregister(client.sessionID)
		return
	}
	client.conn = conn

	if h.opts.Recorder != nil {
		h.opts.Recorder.SessionOpened(client.sessionID, "websocket", client.ipAddress)
	}

	if prev := h.clients.Add(client.sessionID, client); prev != nil {
		logger.WebSocketInfo("Session %s reconnected, closing the earlier connection", client.sessionID)
		prev.expire()
	}
	logger.WebSocketInfo("Session %s connected from %s", client.sessionID, client.ipAddress)

	client.Emit(shared.Message{Type: shared.MessageTypeSession, SessionID: client.sessionID})
	go client.writePump()
	go func() {
		client.session.Run(h.ctx)
		client.Close()
	}()
	client.readPump()
}

// disconnect releases everything a connection held.
func (h *Handler) disconnect(c *Client) {
	c.session.Close()
	c.Close()
	// A replaced connection leaves the bookkeeping to its successor.
	if h.clients.Remove(c.sessionID, c) {
		h.registry.Unregister(c.sessionID)
		if h.opts.Recorder != nil {
			h.opts.Recorder.SessionClosed(c.sessionID)
		}
	}
	logger.WebSocketInfo("Session %s disconnected", c.sessionID)
}

// ConnectedClients returns the number of live connections.
func (h *Handler) ConnectedClients() int {
	return h.clients.Count()
}

// Shutdown ends every session and stops accepting new work.
func (h *Handler) Shutdown() {
	h.cancel()
	h.clients.CloseAll()
}
