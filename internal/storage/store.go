// Package storage implements the SQLite-backed store for sessions,
// hash-chained thoughts, and reasoning tasks.
//
// The coordination core consumes this through a narrow read/write
// contract; durability is this package's whole job. Thoughts are
// immutable rows — there is no update path for them by design.
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Kastalien-Research/thoughtbox-sub003/internal/task"
	"github.com/Kastalien-Research/thoughtbox-sub003/internal/thought"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// timeNow is a package-level var to allow test injection.
var timeNow = time.Now

// ErrNotFound is returned when a session or task does not exist.
var ErrNotFound = errors.New("storage: not found")

// Session groups thoughts and branches under one reasoning effort.
type Session struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Status      string  `json:"status"` // active | completed
	CreatedAt   string  `json:"created_at"`
	CompletedAt *string `json:"completed_at,omitempty"`
	Summary     *string `json:"summary,omitempty"`
}

// Session statuses.
const (
	SessionActive    = "active"
	SessionCompleted = "completed"
)

// Config holds store configuration.
type Config struct {
	DataDir string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{DataDir: filepath.Join(home, ".thoughtbox")}
}

// Store is the SQLite-backed persistence engine.
type Store struct {
	db  *sql.DB
	cfg Config
}

// New creates a Store. It creates the data directory if needed, opens
// SQLite with WAL mode, and runs migrations.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("storage: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "thoughtbox.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("storage: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("storage: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sessions (
			id           TEXT PRIMARY KEY,
			title        TEXT NOT NULL,
			status       TEXT NOT NULL DEFAULT 'active',
			created_at   TEXT NOT NULL,
			completed_at TEXT,
			summary      TEXT
		);

		CREATE TABLE IF NOT EXISTS thoughts (
			id          TEXT NOT NULL,
			session_id  TEXT NOT NULL,
			branch_id   TEXT NOT NULL,
			seq         INTEGER NOT NULL,
			content     TEXT NOT NULL,
			agent_id    TEXT NOT NULL DEFAULT '',
			agent_name  TEXT NOT NULL DEFAULT '',
			parent_hash TEXT NOT NULL,
			hash        TEXT NOT NULL,
			timestamp   TEXT NOT NULL,
			PRIMARY KEY (session_id, branch_id, seq),
			FOREIGN KEY (session_id) REFERENCES sessions(id)
		);

		CREATE INDEX IF NOT EXISTS idx_thoughts_session ON thoughts(session_id, branch_id);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_thoughts_id ON thoughts(session_id, id);

		CREATE TABLE IF NOT EXISTS tasks (
			id              TEXT PRIMARY KEY,
			title           TEXT NOT NULL,
			status          TEXT NOT NULL,
			criteria        TEXT NOT NULL DEFAULT '[]',
			notes           TEXT NOT NULL DEFAULT '[]',
			assigned_agents TEXT NOT NULL DEFAULT '[]',
			linked_sessions TEXT NOT NULL DEFAULT '[]',
			created_at      TEXT NOT NULL,
			updated_at      TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ─── Sessions ────────────────────────────────────────────────────────────────

// CreateSession inserts a new active session. Inserting an existing id
// is an error — session ids come from the coordinator's uuid source.
func (s *Store) CreateSession(id, title string) (*Session, error) {
	now := timeNow().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, title, status, created_at) VALUES (?, ?, ?, ?)`,
		id, title, SessionActive, now,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: create session: %w", err)
	}
	return &Session{ID: id, Title: title, Status: SessionActive, CreatedAt: now}, nil
}

// GetSession loads one session, or ErrNotFound.
func (s *Store) GetSession(id string) (*Session, error) {
	row := s.db.QueryRow(
		`SELECT id, title, status, created_at, completed_at, summary FROM sessions WHERE id = ?`, id,
	)
	var sess Session
	err := row.Scan(&sess.ID, &sess.Title, &sess.Status, &sess.CreatedAt, &sess.CompletedAt, &sess.Summary)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: get session: %w", err)
	}
	return &sess, nil
}

// CompleteSession marks a session completed with an optional summary.
func (s *Store) CompleteSession(id, summary string) (*Session, error) {
	now := timeNow().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`UPDATE sessions SET status = ?, completed_at = ?, summary = ? WHERE id = ? AND status = ?`,
		SessionCompleted, now, summary, id, SessionActive,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: complete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("storage: complete session: %w", err)
	}
	if n == 0 {
		// Either missing or already completed; let the caller see which.
		if _, getErr := s.GetSession(id); getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("session %q is not active", id)
	}
	return s.GetSession(id)
}

// ListSessions returns sessions newest first.
func (s *Store) ListSessions(limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT id, title, status, created_at, completed_at, summary
		 FROM sessions ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: list sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Title, &sess.Status, &sess.CreatedAt, &sess.CompletedAt, &sess.Summary); err != nil {
			return nil, fmt.Errorf("storage: scan session: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// ─── Thoughts ────────────────────────────────────────────────────────────────

// AppendThought stores a fully-formed thought at the end of its branch.
// The caller is responsible for chain linkage (ParentHash/Hash) and for
// serializing writes per branch; the store only assigns the sequence
// number from the current branch length.
func (s *Store) AppendThought(t *thought.Thought) error {
	var seq int
	err := s.db.QueryRow(
		`SELECT COALESCE(MAX(seq), -1) + 1 FROM thoughts WHERE session_id = ? AND branch_id = ?`,
		t.SessionID, t.BranchID,
	).Scan(&seq)
	if err != nil {
		return fmt.Errorf("storage: next seq: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO thoughts (id, session_id, branch_id, seq, content, agent_id, agent_name, parent_hash, hash, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.SessionID, t.BranchID, seq, t.Content, t.AgentID, t.AgentName, t.ParentHash, t.Hash, t.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("storage: append thought: %w", err)
	}
	return nil
}

// ListBranchThoughts returns one branch's thoughts in append order.
// An unknown branch is an empty slice, not an error.
func (s *Store) ListBranchThoughts(sessionID, branchID string) ([]thought.Thought, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, branch_id, content, agent_id, agent_name, parent_hash, hash, timestamp
		 FROM thoughts WHERE session_id = ? AND branch_id = ? ORDER BY seq`,
		sessionID, branchID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: list branch thoughts: %w", err)
	}
	defer rows.Close()

	var out []thought.Thought
	for rows.Next() {
		var t thought.Thought
		if err := rows.Scan(&t.ID, &t.SessionID, &t.BranchID, &t.Content, &t.AgentID, &t.AgentName, &t.ParentHash, &t.Hash, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("storage: scan thought: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListBranches returns the distinct branch ids of a session, in order
// of first appearance.
func (s *Store) ListBranches(sessionID string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT branch_id FROM thoughts WHERE session_id = ? GROUP BY branch_id ORDER BY MIN(seq), branch_id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: list branches: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var b string
		if err := rows.Scan(&b); err != nil {
			return nil, fmt.Errorf("storage: scan branch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ─── Tasks ───────────────────────────────────────────────────────────────────

// CreateTask inserts a new task record.
func (s *Store) CreateTask(t *task.Task) error {
	criteria, notes, agents, sessions, err := marshalTaskFields(t)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO tasks (id, title, status, criteria, notes, assigned_agents, linked_sessions, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, string(t.Status), criteria, notes, agents, sessions, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("storage: create task: %w", err)
	}
	return nil
}

// LoadTask loads one task, or ErrNotFound.
func (s *Store) LoadTask(id string) (*task.Task, error) {
	row := s.db.QueryRow(
		`SELECT id, title, status, criteria, notes, assigned_agents, linked_sessions, created_at, updated_at
		 FROM tasks WHERE id = ?`, id,
	)
	return scanTask(row)
}

// SaveTask persists the current state of an existing task.
func (s *Store) SaveTask(t *task.Task) error {
	criteria, notes, agents, sessions, err := marshalTaskFields(t)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(
		`UPDATE tasks SET title = ?, status = ?, criteria = ?, notes = ?, assigned_agents = ?, linked_sessions = ?, updated_at = ?
		 WHERE id = ?`,
		t.Title, string(t.Status), criteria, notes, agents, sessions, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("storage: save task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: save task: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("task %q: %w", t.ID, ErrNotFound)
	}
	return nil
}

// ListTasks returns tasks, optionally filtered by status, newest first.
func (s *Store) ListTasks(status task.Status, limit int) ([]task.Task, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, title, status, criteria, notes, assigned_agents, linked_sessions, created_at, updated_at
	          FROM tasks`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: list tasks: %w", err)
	}
	defer rows.Close()

	var out []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*task.Task, error) {
	var t task.Task
	var status, criteria, notes, agents, sessions string
	err := row.Scan(&t.ID, &t.Title, &status, &criteria, &notes, &agents, &sessions, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: scan task: %w", err)
	}
	t.Status = task.Status(status)

	if err := json.Unmarshal([]byte(criteria), &t.Criteria); err != nil {
		return nil, fmt.Errorf("storage: parse criteria for task %q: %w", t.ID, err)
	}
	if err := json.Unmarshal([]byte(notes), &t.Notes); err != nil {
		return nil, fmt.Errorf("storage: parse notes for task %q: %w", t.ID, err)
	}
	if err := json.Unmarshal([]byte(agents), &t.AssignedAgents); err != nil {
		return nil, fmt.Errorf("storage: parse assigned agents for task %q: %w", t.ID, err)
	}
	if err := json.Unmarshal([]byte(sessions), &t.LinkedSessions); err != nil {
		return nil, fmt.Errorf("storage: parse linked sessions for task %q: %w", t.ID, err)
	}
	return &t, nil
}

func marshalTaskFields(t *task.Task) (criteria, notes, agents, sessions string, err error) {
	c, err := json.Marshal(t.Criteria)
	if err != nil {
		return "", "", "", "", fmt.Errorf("storage: marshal criteria: %w", err)
	}
	n, err := json.Marshal(t.Notes)
	if err != nil {
		return "", "", "", "", fmt.Errorf("storage: marshal notes: %w", err)
	}
	a, err := json.Marshal(t.AssignedAgents)
	if err != nil {
		return "", "", "", "", fmt.Errorf("storage: marshal assigned agents: %w", err)
	}
	l, err := json.Marshal(t.LinkedSessions)
	if err != nil {
		return "", "", "", "", fmt.Errorf("storage: marshal linked sessions: %w", err)
	}
	return string(c), string(n), string(a), string(l), nil
}
