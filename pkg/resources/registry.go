package resources

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/flivyn/flivynterm/pkg/configuration"
	"github.com/flivyn/flivynterm/pkg/logger"
)

var (
	ErrTooManySessions = errors.New("too many sessions")
	ErrRateLimited     = errors.New("message rate limit exceeded")
	ErrUnknownSession  = errors.New("session not found")
)

// Limits bounds what one client may consume.
type Limits struct {
	MaxSessionsPerIP     int
	MaxMessagesPerMinute int
	MaxInactiveTime      time.Duration
}

// LimitsFromConfig reads the [Sessions] section.
func LimitsFromConfig() Limits {
	return Limits{
		MaxSessionsPerIP:     configuration.GetInt("Sessions", "max_sessions_per_ip", 5),
		MaxMessagesPerMinute: configuration.GetInt("Sessions", "max_messages_per_minute", 600),
		MaxInactiveTime:      configuration.GetDuration("Sessions", "max_inactive_time", 30*time.Minute),
	}
}

// SessionResource is the bookkeeping for one live terminal session.
type SessionResource struct {
	SessionID    string
	IPAddress    string
	CreatedAt    time.Time
	LastActivity time.Time
	MessageCount int64
	windowStart  time.Time
	windowCount  int
	close        func()
}

// Registry tracks live sessions, enforces per-IP and per-minute limits and
// closes sessions that went idle.
type Registry struct {
	limits Limits
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*SessionResource
}

// NewRegistry creates an empty registry.
func NewRegistry(limits Limits) *Registry {
	return &Registry{
		limits:   limits,
		now:      time.Now,
		sessions: make(map[string]*SessionResource),
	}
}

// Register admits a session. closeFn is called when the session is swept
// for inactivity; it must not call back into the registry synchronously.
func (r *Registry) Register(sessionID, ip string, closeFn func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[sessionID]; ok {
		// A reconnect takes over the bookkeeping of the earlier connection.
		existing.LastActivity = r.now()
		existing.close = closeFn
		return nil
	}

	if r.limits.MaxSessionsPerIP > 0 {
		count := 0
		for _, s := range r.sessions {
			if s.IPAddress == ip {
				count++
			}
		}
		if count >= r.limits.MaxSessionsPerIP {
			return fmt.Errorf("%w for %s: %d", ErrTooManySessions, ip, count)
		}
	}

	now := r.now()
	r.sessions[sessionID] = &SessionResource{
		SessionID:    sessionID,
		IPAddress:    ip,
		CreatedAt:    now,
		LastActivity: now,
		windowStart:  now,
		close:        closeFn,
	}
	logger.SessionInfo("Session registered: %s (IP: %s)", sessionID, ip)
	return nil
}

// Unregister forgets a session. Unknown ids are ignored.
func (r *Registry) Unregister(sessionID string) {
	r.mu.Lock()
	s, ok := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	r.mu.Unlock()

	if ok {
		logger.SessionInfo("Session unregistered: %s (duration %v, messages %d)",
			sessionID, r.now().Sub(s.CreatedAt).Round(time.Second), s.MessageCount)
	}
}

// CheckMessage counts one inbound message and marks the session active.
func (r *Registry) CheckMessage(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}

	now := r.now()
	s.LastActivity = now
	s.MessageCount++
	if now.Sub(s.windowStart) >= time.Minute {
		s.windowStart = now
		s.windowCount = 0
	}
	s.windowCount++

	if r.limits.MaxMessagesPerMinute > 0 && s.windowCount > r.limits.MaxMessagesPerMinute {
		return fmt.Errorf("%w for session %s: %d per minute", ErrRateLimited, sessionID, s.windowCount)
	}
	return nil
}

// Sweep closes and removes sessions idle for longer than MaxInactiveTime.
func (r *Registry) Sweep() int {
	if r.limits.MaxInactiveTime <= 0 {
		return 0
	}

	r.mu.Lock()
	now := r.now()
	var idle []*SessionResource
	for id, s := range r.sessions {
		if now.Sub(s.LastActivity) > r.limits.MaxInactiveTime {
			idle = append(idle, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		logger.SessionInfo("Closing inactive session: %s", s.SessionID)
		if s.close != nil {
			s.close()
		}
	}
	if len(idle) > 0 {
		logger.SessionInfo("Cleaned up %d inactive sessions", len(idle))
	}
	return len(idle)
}

// StartCleanup sweeps every interval until ctx is done.
func (r *Registry) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Sweep()
			}
		}
	}()
}

// Stats describes the registry at one instant.
type Stats struct {
	Sessions      int   `json:"sessions"`
	UniqueIPs     int   `json:"uniqueIps"`
	TotalMessages int64 `json:"totalMessages"`
}

func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	ips := make(map[string]struct{})
	var st Stats
	for _, s := range r.sessions {
		st.TotalMessages += s.MessageCount
		ips[s.IPAddress] = struct{}{}
	}
	st.Sessions = len(r.sessions)
	st.UniqueIPs = len(ips)
	return st
}
