// Package activity records context fetches to an embedded SQLite
// database, so operators can see which project documents are actually
// used and whether reads fail.
//
// Recording is strictly fire-and-forget: Record never blocks the caller,
// a full buffer drops the event instead of slowing a tool call, and a
// broken store can never change a tool result. The read side (Recent,
// Summary) powers the context_stats tool.
package activity

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Outcome values recorded for a fetch.
const (
	OutcomeOK        = "ok"
	OutcomeNotFound  = "not_found"
	OutcomeReadError = "read_error"
)

// ─── Types ───────────────────────────────────────────────────────────────────

// Event is one recorded context fetch.
type Event struct {
	ID        int64
	SessionID string
	Project   string
	Outcome   string
	Bytes     int
	ElapsedMs int64
	CreatedAt time.Time
}

// Recorder accepts events without blocking the caller.
type Recorder interface {
	Record(e Event)
}

// NopRecorder discards every event. It stands in for the store when
// recording is disabled, and in tests.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(Event) {}

// ProjectStats aggregates fetch activity for one project.
type ProjectStats struct {
	Project     string
	Fetches     int
	Failures    int
	LastFetched string
}

// Summary holds aggregate activity statistics across all projects.
type Summary struct {
	TotalFetches  int
	TotalFailures int
	Projects      []ProjectStats
}

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds activity store configuration.
type Config struct {
	DataDir    string
	BufferSize int
	MaxRecent  int
}

// DefaultConfig returns the default configuration for the activity store.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:    filepath.Join(home, ".atlas"),
		BufferSize: 256,
		MaxRecent:  50,
	}
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the persistent activity log backed by SQLite. One Store
// corresponds to one serve session: every event it records carries the
// same fresh session ID.
type Store struct {
	db        *sql.DB
	cfg       Config
	log       *zap.Logger
	sessionID string

	events  chan Event
	flushCh chan chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// New creates the data directory if needed, opens SQLite with WAL mode,
// runs migrations, and starts the background flush loop.
func New(cfg Config, log *zap.Logger) (*Store, error) {
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("activity: data directory is required")
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 256
	}
	if cfg.MaxRecent <= 0 {
		cfg.MaxRecent = 50
	}
	if log == nil {
		log = zap.NewNop()
	}

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("activity: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "activity.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("activity: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("activity: pragma %q: %w", p, err)
		}
	}

	s := &Store{
		db:        db,
		cfg:       cfg,
		log:       log,
		sessionID: uuid.NewString(),
		events:    make(chan Event, cfg.BufferSize),
		flushCh:   make(chan chan struct{}),
		done:      make(chan struct{}),
	}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("activity: migration: %w", err)
	}

	s.wg.Add(1)
	go s.flushLoop()

	return s, nil
}

// SessionID returns the ID stamped on every event this store records.
func (s *Store) SessionID() string {
	return s.sessionID
}

// Close stops the flush loop, writes any buffered events, and closes
// the database. Safe to call more than once.
func (s *Store) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS fetch_events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT    NOT NULL,
			project    TEXT    NOT NULL,
			outcome    TEXT    NOT NULL,
			bytes      INTEGER NOT NULL DEFAULT 0,
			elapsed_ms INTEGER NOT NULL DEFAULT 0,
			created_at TEXT    NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_fetch_events_project ON fetch_events(project);
		CREATE INDEX IF NOT EXISTS idx_fetch_events_created ON fetch_events(created_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// ─── Recording ───────────────────────────────────────────────────────────────

// Record implements Recorder. It stamps the session ID and timestamp
// and hands the event to the flush loop. It never blocks: when the
// buffer is full the event is dropped with a logged warning.
func (s *Store) Record(e Event) {
	e.SessionID = s.sessionID
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	select {
	case s.events <- e:
	default:
		s.log.Warn("activity buffer full, dropping event",
			zap.String("project", e.Project),
			zap.String("outcome", e.Outcome),
		)
	}
}

// Flush blocks until every event recorded before the call is written.
// Reads call it internally; tests and shutdown paths may call it too.
func (s *Store) Flush() {
	ack := make(chan struct{})
	select {
	case s.flushCh <- ack:
		<-ack
	case <-s.done:
	}
}

// flushLoop owns all writes. It drains the event channel until Close.
func (s *Store) flushLoop() {
	defer s.wg.Done()
	for {
		select {
		case e := <-s.events:
			s.insert(e)
		case ack := <-s.flushCh:
			s.drain()
			close(ack)
		case <-s.done:
			s.drain()
			return
		}
	}
}

// drain inserts everything currently buffered without blocking.
func (s *Store) drain() {
	for {
		select {
		case e := <-s.events:
			s.insert(e)
		default:
			return
		}
	}
}

func (s *Store) insert(e Event) {
	_, err := s.db.Exec(
		`INSERT INTO fetch_events (session_id, project, outcome, bytes, elapsed_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.Project, e.Outcome, e.Bytes, e.ElapsedMs,
		e.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		s.log.Warn("activity insert failed", zap.Error(err))
	}
}

// ─── Queries ─────────────────────────────────────────────────────────────────

// Recent returns the most recent events, newest first. A limit of zero
// or above the configured maximum falls back to the maximum. Pending
// events are flushed first so the view is current.
func (s *Store) Recent(limit int) ([]Event, error) {
	if limit <= 0 || limit > s.cfg.MaxRecent {
		limit = s.cfg.MaxRecent
	}
	s.Flush()

	rows, err := s.db.Query(
		`SELECT id, session_id, project, outcome, bytes, elapsed_ms, created_at
		 FROM fetch_events
		 ORDER BY id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("activity: query recent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []Event
	for rows.Next() {
		var e Event
		var created string
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Project, &e.Outcome, &e.Bytes, &e.ElapsedMs, &created); err != nil {
			return nil, fmt.Errorf("activity: scan event: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("activity: iterate events: %w", err)
	}

	return events, nil
}

// Summary aggregates fetch counts, failure counts, and last-fetched
// timestamps per project, ordered by fetch count descending. Pending
// events are flushed first so the view is current.
func (s *Store) Summary() (Summary, error) {
	s.Flush()

	rows, err := s.db.Query(
		`SELECT project,
		        COUNT(*),
		        SUM(CASE WHEN outcome != 'ok' THEN 1 ELSE 0 END),
		        MAX(created_at)
		 FROM fetch_events
		 GROUP BY project
		 ORDER BY COUNT(*) DESC, project`)
	if err != nil {
		return Summary{}, fmt.Errorf("activity: query summary: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sum Summary
	for rows.Next() {
		var p ProjectStats
		if err := rows.Scan(&p.Project, &p.Fetches, &p.Failures, &p.LastFetched); err != nil {
			return Summary{}, fmt.Errorf("activity: scan summary: %w", err)
		}
		sum.TotalFetches += p.Fetches
		sum.TotalFailures += p.Failures
		sum.Projects = append(sum.Projects, p)
	}
	if err := rows.Err(); err != nil {
		return Summary{}, fmt.Errorf("activity: iterate summary: %w", err)
	}

	return sum, nil
}
