package audit

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/halim/toolbridge/pkg/gateway"
)

// Store persists dispatch audit records in SQLite. It implements
// gateway.AuditRecorder; writes that fail are logged and dropped rather
// than failing the dispatch.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS dispatches (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	tool_name   TEXT NOT NULL,
	session_id  TEXT NOT NULL,
	user_id     TEXT NOT NULL,
	outcome     TEXT NOT NULL,
	detail      TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL,
	at          TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dispatches_at ON dispatches(at);
CREATE INDEX IF NOT EXISTS idx_dispatches_tool ON dispatches(tool_name);
`

// NewStore opens (or creates) the audit database at path.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create audit directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize audit schema: %w", err)
	}

	log.Info().Str("path", path).Msg("Audit store opened")

	return &Store{db: db}, nil
}

// Record implements gateway.AuditRecorder.
func (s *Store) Record(rec gateway.AuditRecord) {
	_, err := s.db.Exec(
		`INSERT INTO dispatches (tool_name, session_id, user_id, outcome, detail, duration_ms, at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ToolName, rec.SessionID, rec.UserID, string(rec.Outcome),
		rec.Detail, rec.Duration.Milliseconds(), rec.At.UTC(),
	)
	if err != nil {
		log.Error().
			Err(err).
			Str("tool", rec.ToolName).
			Str("session_id", rec.SessionID).
			Msg("Failed to persist audit record")
	}
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(limit int) ([]gateway.AuditRecord, error) {
	rows, err := s.db.Query(
		`SELECT tool_name, session_id, user_id, outcome, detail, duration_ms, at
		 FROM dispatches ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}
	defer rows.Close()

	var out []gateway.AuditRecord
	for rows.Next() {
		var rec gateway.AuditRecord
		var outcome string
		var durationMs int64
		if err := rows.Scan(&rec.ToolName, &rec.SessionID, &rec.UserID,
			&outcome, &rec.Detail, &durationMs, &rec.At); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		rec.Outcome = gateway.Outcome(outcome)
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}

// PruneBefore deletes records older than cutoff and reports how many were
// removed.
func (s *Store) PruneBefore(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM dispatches WHERE at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Info().Int64("removed", n).Time("cutoff", cutoff).Msg("Pruned audit records")
	}
	return n, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
