package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/flivyn/flivynterm/pkg/logger"

	"github.com/google/uuid"
)

const defaultQueueSize = 1024

// Store writes audit records on a background goroutine. Sessions hand
// records over without waiting on the database; when the queue is full
// the record is dropped and logged.
type Store struct {
	db    *sql.DB
	now   func() time.Time
	queue chan func(*sql.DB) error

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// New starts the writer for db. Call Close to flush pending records.
func New(db *sql.DB) *Store {
	s := &Store{
		db:    db,
		now:   time.Now,
		queue: make(chan func(*sql.DB) error, defaultQueueSize),
	}
	s.wg.Add(1)
	go s.writer()
	return s
}

// Open is InitDB, CreateTables and New in one step.
func Open(dbPath string) (*Store, error) {
	db, err := InitDB(dbPath)
	if err != nil {
		return nil, err
	}
	if err := CreateTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return New(db), nil
}

func (s *Store) writer() {
	defer s.wg.Done()
	for write := range s.queue {
		if err := write(s.db); err != nil {
			logger.Error(logger.AreaDatabase, "Audit write failed: %v", err)
		}
	}
}

func (s *Store) enqueue(kind string, write func(*sql.DB) error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.queue <- write:
	default:
		logger.Warn(logger.AreaDatabase, "Audit queue full, dropped %s record", kind)
	}
}

// SessionOpened records the start of a session.
func (s *Store) SessionOpened(sessionID, transport, ip string) {
	at := s.now().Unix()
	s.enqueue("session", func(db *sql.DB) error {
		_, err := db.Exec(
			`INSERT OR REPLACE INTO sessions (id, transport, ip_address, started_at) VALUES (?, ?, ?, ?)`,
			sessionID, transport, ip, at)
		return err
	})
}

// SessionClosed stamps the end of a session.
func (s *Store) SessionClosed(sessionID string) {
	at := s.now().Unix()
	s.enqueue("session", func(db *sql.DB) error {
		_, err := db.Exec(`UPDATE sessions SET ended_at = ? WHERE id = ?`, at, sessionID)
		return err
	})
}

// RecordCommand implements session.Recorder.
func (s *Store) RecordCommand(sessionID, line string) {
	command := line
	if fields := strings.Fields(line); len(fields) > 0 {
		command = strings.ToLower(fields[0])
	}
	id := uuid.NewString()
	at := s.now().Unix()
	s.enqueue("command", func(db *sql.DB) error {
		_, err := db.Exec(
			`INSERT INTO command_log (id, session_id, command, line, created_at) VALUES (?, ?, ?, ?, ?)`,
			id, sessionID, command, line, at)
		return err
	})
}

// RecordGame implements session.Recorder.
func (s *Store) RecordGame(sessionID string, score int) {
	id := uuid.NewString()
	at := s.now().Unix()
	s.enqueue("score", func(db *sql.DB) error {
		_, err := db.Exec(
			`INSERT INTO snake_scores (id, session_id, score, created_at) VALUES (?, ?, ?, ?)`,
			id, sessionID, score, at)
		return err
	})
}

// Close stops accepting records, waits for the queue to drain and closes
// the database.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	s.wg.Wait()
	return s.db.Close()
}

// Flush blocks until every record queued before the call is written.
func (s *Store) Flush(ctx context.Context) error {
	done := make(chan struct{})
	s.enqueue("flush", func(*sql.DB) error {
		close(done)
		return nil
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("flush: %w", ctx.Err())
	}
}
