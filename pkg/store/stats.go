package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/flivyn/flivynterm/pkg/logger"
)

// CommandCount is how often one command was run.
type CommandCount struct {
	Command string `json:"command"`
	Count   int64  `json:"count"`
}

// Score is one finished snake game.
type Score struct {
	SessionID string    `json:"sessionId"`
	Score     int       `json:"score"`
	PlayedAt  time.Time `json:"playedAt"`
}

// Stats summarises the audit tables.
type Stats struct {
	Sessions    int64          `json:"sessions"`
	Commands    int64          `json:"commands"`
	TopCommands []CommandCount `json:"topCommands"`
	HighScores  []Score        `json:"highScores"`
}

// Stats reads totals, the most used commands and the best snake scores.
func (s *Store) Stats(ctx context.Context, limit int) (Stats, error) {
	var st Stats
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&st.Sessions); err != nil {
		return st, fmt.Errorf("count sessions: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM command_log`).Scan(&st.Commands); err != nil {
		return st, fmt.Errorf("count commands: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT command, COUNT(*) AS n FROM command_log GROUP BY command ORDER BY n DESC, command LIMIT ?`, limit)
	if err != nil {
		return st, fmt.Errorf("top commands: %w", err)
	}
	st.TopCommands = []CommandCount{}
	for rows.Next() {
		var c CommandCount
		if err := rows.Scan(&c.Command, &c.Count); err != nil {
			rows.Close()
			return st, err
		}
		st.TopCommands = append(st.TopCommands, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return st, err
	}

	st.HighScores, err = s.HighScores(ctx, limit)
	return st, err
}

// HighScores returns the best snake games, newest first among ties.
func (s *Store) HighScores(ctx context.Context, limit int) ([]Score, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, score, created_at FROM snake_scores ORDER BY score DESC, created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("high scores: %w", err)
	}
	defer rows.Close()

	scores := []Score{}
	for rows.Next() {
		var sc Score
		var at int64
		if err := rows.Scan(&sc.SessionID, &sc.Score, &at); err != nil {
			return nil, err
		}
		sc.PlayedAt = time.Unix(at, 0).UTC()
		scores = append(scores, sc)
	}
	return scores, rows.Err()
}

// HandleStats serves Stats as JSON.
func (s *Store) HandleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.Stats(r.Context(), 10)
	if err != nil {
		logger.Error(logger.AreaDatabase, "Stats query failed: %v", err)
		http.Error(w, "stats unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(st); err != nil {
		logger.Warn(logger.AreaDatabase, "Failed to write stats: %v", err)
	}
}
