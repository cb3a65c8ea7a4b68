// Package metrics provides Prometheus metrics for the terminal server.
package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flivynterm_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flivynterm_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	commandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flivynterm_commands_total",
			Help: "Commands executed by the interpreter",
		},
		[]string{"command"},
	)

	sessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flivynterm_sessions_active",
			Help: "Terminal sessions currently running",
		},
	)

	sessionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flivynterm_sessions_total",
			Help: "Terminal sessions started",
		},
	)

	scriptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flivynterm_scripted_sequences_total",
			Help: "Scripted output sequences by outcome",
		},
		[]string{"outcome"},
	)

	authAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flivynterm_admin_auth_attempts_total",
			Help: "Admin password attempts",
		},
		[]string{"result"},
	)

	snakeScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flivynterm_snake_score",
			Help:    "Final score of finished snake games",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	wsMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flivynterm_websocket_messages_total",
			Help: "WebSocket frames by direction",
		},
		[]string{"direction"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCommand counts one interpreter command. Callers pass "unknown" for
// tokens outside the command table to keep label cardinality bounded.
func RecordCommand(command string) {
	commandsTotal.WithLabelValues(command).Inc()
}

// SessionStarted marks a new running session.
func SessionStarted() {
	sessionsTotal.Inc()
	sessionsActive.Inc()
}

// SessionEnded marks a session as gone.
func SessionEnded() {
	sessionsActive.Dec()
}

// RecordScript records how a scripted sequence ended: "completed" or "cancelled".
func RecordScript(outcome string) {
	scriptsTotal.WithLabelValues(outcome).Inc()
}

// RecordAuthAttempt records an admin password attempt.
func RecordAuthAttempt(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	authAttemptsTotal.WithLabelValues(result).Inc()
}

// RecordSnakeScore records the score of a finished game.
func RecordSnakeScore(score int) {
	snakeScores.Observe(float64(score))
}

// RecordWebSocketMessage counts a frame, direction is "in" or "out".
func RecordWebSocketMessage(direction string) {
	wsMessagesTotal.WithLabelValues(direction).Inc()
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack passes through so WebSocket upgrades work behind the middleware.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	rw.statusCode = http.StatusSwitchingProtocols
	return h.Hijack()
}

// Middleware returns HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		RecordHTTPRequest(r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	})
}
