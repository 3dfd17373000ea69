// Package episodic implements the recent-history tier: a durable,
// recency-ordered, importance-weighted record log in SQLite.
package episodic

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one episodic memory row.
type Record struct {
	ID         int64          `json:"-"`
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  time.Time      `json:"created_at"`
	Importance int            `json:"importance"`
}

// Log stores recent interactions for one agent namespace. When the
// namespace exceeds its entry cap, the lowest-importance oldest records
// are evicted. Every write is committed before Store returns; nothing
// is buffered.
type Log struct {
	db         *sql.DB
	agentID    string
	maxEntries int
}

// Open opens or creates the log database at path. Records are
// namespaced by agentID; maxEntries caps the namespace (default 1000).
func Open(path, agentID string, maxEntries int) (*Log, error) {
	if maxEntries <= 0 {
		maxEntries = 1000
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	l := &Log{db: db, agentID: agentID, maxEntries: maxEntries}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return l, nil
}

func (l *Log) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memories (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		agent_id    TEXT NOT NULL,
		content     TEXT NOT NULL,
		metadata    TEXT NOT NULL DEFAULT '{}',
		created_at  INTEGER NOT NULL,
		importance  INTEGER NOT NULL DEFAULT 5
	);
	CREATE INDEX IF NOT EXISTS idx_agent_time ON memories(agent_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_agent_importance ON memories(agent_id, importance, created_at);
	`
	_, err := l.db.Exec(schema)
	return err
}

// Store inserts a record stamped with the current time, then evicts the
// lowest-(importance, age) records if the namespace exceeds its cap.
// Importance is stored as given; eviction ordering handles out-of-range
// values the same as any other.
func (l *Log) Store(ctx context.Context, content string, metadata map[string]any, importance int) error {
	if metadata == nil {
		metadata = map[string]any{}
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO memories (agent_id, content, metadata, created_at, importance)
		 VALUES (?, ?, ?, ?, ?)`,
		l.agentID, content, string(metaJSON), time.Now().UnixNano(), importance)
	if err != nil {
		return fmt.Errorf("insert memory: %w", err)
	}

	var count int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memories WHERE agent_id = ?`, l.agentID).Scan(&count)
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}

	if count > l.maxEntries {
		// Lowest importance first, then oldest. Row id breaks residual
		// timestamp ties by insertion order.
		res, err := tx.ExecContext(ctx,
			`DELETE FROM memories WHERE id IN (
				SELECT id FROM memories
				WHERE agent_id = ?
				ORDER BY importance ASC, created_at ASC, id ASC
				LIMIT ?
			)`, l.agentID, count-l.maxEntries)
		if err != nil {
			return fmt.Errorf("evict: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			slog.Debug("evicted episodic records", "agent_id", l.agentID, "count", n)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// RecallRecent returns up to n records, most recent first. Records
// sharing a timestamp come back most-recently-inserted first. n <= 0
// defaults to 20.
func (l *Log) RecallRecent(ctx context.Context, n int) ([]Record, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, content, metadata, created_at, importance FROM memories
		 WHERE agent_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`, l.agentID, n)
	if err != nil {
		return nil, fmt.Errorf("recall recent: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// Search returns up to n records whose content contains keyword,
// ordered by importance then recency. Matching is a case-sensitive
// substring test. n <= 0 defaults to 10.
func (l *Log) Search(ctx context.Context, keyword string, n int) ([]Record, error) {
	if n <= 0 {
		n = 10
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, content, metadata, created_at, importance FROM memories
		 WHERE agent_id = ? AND instr(content, ?) > 0
		 ORDER BY importance DESC, created_at DESC, id DESC
		 LIMIT ?`, l.agentID, keyword, n)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// Clear removes every record in this namespace. Other namespaces in the
// same database file are untouched.
func (l *Log) Clear(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, `DELETE FROM memories WHERE agent_id = ?`, l.agentID)
	if err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	return nil
}

// Count returns the exact number of records in this namespace.
func (l *Log) Count(ctx context.Context) (int, error) {
	var count int
	err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memories WHERE agent_id = ?`, l.agentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return count, nil
}

func (l *Log) Close() error {
	return l.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var r Record
	var metaJSON string
	var createdAt int64

	if err := row.Scan(&r.ID, &r.Content, &metaJSON, &createdAt, &r.Importance); err != nil {
		return r, err
	}
	r.CreatedAt = time.Unix(0, createdAt)
	if err := json.Unmarshal([]byte(metaJSON), &r.Metadata); err != nil {
		r.Metadata = map[string]any{}
	}
	return r, nil
}

func collectRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
