package store

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s.now = func() time.Time { return time.Unix(1700000000, 0) }
	t.Cleanup(func() { s.Close() })
	return s
}

func flush(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func TestCreateTablesIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	if err := CreateTables(s.db); err != nil {
		t.Fatalf("second CreateTables: %v", err)
	}
}

func TestRecordsAndStats(t *testing.T) {
	s := openTestStore(t)

	s.SessionOpened("a", "websocket", "192.0.2.1")
	s.SessionOpened("b", "local", "")
	s.RecordCommand("a", "ls docs")
	s.RecordCommand("a", "LS")
	s.RecordCommand("b", "cat notes.txt")
	s.RecordGame("a", 3)
	s.RecordGame("b", 7)
	s.SessionClosed("a")
	flush(t, s)

	st, err := s.Stats(context.Background(), 10)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Sessions != 2 || st.Commands != 3 {
		t.Errorf("sessions=%d commands=%d", st.Sessions, st.Commands)
	}
	if len(st.TopCommands) != 2 || st.TopCommands[0] != (CommandCount{"ls", 2}) {
		t.Errorf("top commands = %+v", st.TopCommands)
	}
	if len(st.HighScores) != 2 || st.HighScores[0].Score != 7 || st.HighScores[0].SessionID != "b" {
		t.Errorf("high scores = %+v", st.HighScores)
	}

	var ended int64
	if err := s.db.QueryRow(`SELECT ended_at FROM sessions WHERE id = 'a'`).Scan(&ended); err != nil {
		t.Fatalf("ended_at: %v", err)
	}
	if ended != 1700000000 {
		t.Errorf("ended_at = %d", ended)
	}
}

func TestHighScoresLimit(t *testing.T) {
	s := openTestStore(t)
	for i := 0; i < 5; i++ {
		s.RecordGame("x", i)
	}
	flush(t, s)

	scores, err := s.HighScores(context.Background(), 3)
	if err != nil {
		t.Fatalf("HighScores: %v", err)
	}
	if len(scores) != 3 || scores[0].Score != 4 || scores[2].Score != 2 {
		t.Errorf("scores = %+v", scores)
	}
}

func TestRecordAfterCloseIsIgnored(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	s.RecordCommand("a", "ls")
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestHandleStats(t *testing.T) {
	s := openTestStore(t)
	s.RecordCommand("a", "help")
	flush(t, s)

	w := httptest.NewRecorder()
	s.HandleStats(w, httptest.NewRequest("GET", "/api/stats", nil))
	if w.Code != 200 {
		t.Fatalf("status %d", w.Code)
	}
	var st Stats
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Commands != 1 || len(st.HighScores) != 0 {
		t.Errorf("stats = %+v", st)
	}
}
