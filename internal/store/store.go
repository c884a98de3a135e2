// Package store persists completed translation runs: the translated CSVs
// on disk under a per-session directory, and run metadata in a sqlite
// history table. Only the most recent runs are kept; older sessions are
// evicted together with their files.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultRetention is how many completed sessions the store keeps.
const DefaultRetention = 10

// File is one output file of a session.
type File struct {
	Name    string
	Content string
}

// Record is the metadata of one completed run.
type Record struct {
	SessionID string          `json:"sessionId"`
	Language  string          `json:"language"`
	Provider  string          `json:"provider"`
	Files     []string        `json:"files"`
	Duration  time.Duration   `json:"duration"`
	Stats     json.RawMessage `json:"stats,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Store is a history of translation runs backed by a directory and a
// sqlite database inside it.
type Store struct {
	db        *sql.DB
	dir       string
	retention int
}

// Open creates or opens a store rooted at dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, "history.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS history (
		session_id  TEXT PRIMARY KEY,
		language    TEXT NOT NULL,
		provider    TEXT NOT NULL,
		files       TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		stats       TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMP NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history table: %w", err)
	}

	return &Store{db: db, dir: dir, retention: DefaultRetention}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes the session's files to disk, records the run in the history
// table and evicts sessions beyond the retention window.
func (s *Store) Save(rec *Record, files []File) error {
	if rec.SessionID == "" {
		return fmt.Errorf("session id is required")
	}

	dir := filepath.Join(s.dir, rec.SessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	rec.Files = rec.Files[:0]
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f.Name), []byte(f.Content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.Name, err)
		}
		rec.Files = append(rec.Files, f.Name)
	}

	names, err := json.Marshal(rec.Files)
	if err != nil {
		return err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO history (session_id, language, provider, files, duration_ms, stats, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.Language, rec.Provider, string(names),
		rec.Duration.Milliseconds(), string(rec.Stats), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}

	return s.evict()
}

// Session returns the record for one session id.
func (s *Store) Session(id string) (*Record, error) {
	row := s.db.QueryRow(
		`SELECT session_id, language, provider, files, duration_ms, stats, created_at
		 FROM history WHERE session_id = ?`, id)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	return rec, err
}

// History returns all retained runs, most recent first.
func (s *Store) History() ([]*Record, error) {
	rows, err := s.db.Query(
		`SELECT session_id, language, provider, files, duration_ms, stats, created_at
		 FROM history ORDER BY created_at DESC, session_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// FileContent reads one output file of a session. Names containing path
// separators are rejected.
func (s *Store) FileContent(session, name string) (string, error) {
	if strings.ContainsAny(session, `/\`) || strings.ContainsAny(name, `/\`) || name == ".." || session == ".." {
		return "", fmt.Errorf("invalid file reference: %s/%s", session, name)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, session, name))
	if err != nil {
		return "", fmt.Errorf("failed to read session file: %w", err)
	}
	return string(data), nil
}

func (s *Store) evict() error {
	rows, err := s.db.Query(
		`SELECT session_id FROM history ORDER BY created_at DESC, session_id LIMIT -1 OFFSET ?`,
		s.retention)
	if err != nil {
		return fmt.Errorf("failed to list evictable sessions: %w", err)
	}
	var evicted []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		evicted = append(evicted, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, id := range evicted {
		if _, err := s.db.Exec(`DELETE FROM history WHERE session_id = ?`, id); err != nil {
			return fmt.Errorf("failed to evict session %s: %w", id, err)
		}
		if err := os.RemoveAll(filepath.Join(s.dir, id)); err != nil {
			return fmt.Errorf("failed to remove session directory %s: %w", id, err)
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var rec Record
	var files, stats string
	var durationMS int64
	if err := row.Scan(&rec.SessionID, &rec.Language, &rec.Provider, &files, &durationMS, &stats, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(files), &rec.Files); err != nil {
		return nil, fmt.Errorf("corrupt file list for session %s: %w", rec.SessionID, err)
	}
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	if stats != "" {
		rec.Stats = json.RawMessage(stats)
	}
	return &rec, nil
}
