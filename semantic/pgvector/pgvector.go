// Package pgvector backs the semantic index with Postgres and the
// pgvector extension, for deployments where agent memory must live in
// shared networked storage rather than on one machine's disk.
package pgvector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"
	pgv "github.com/pgvector/pgvector-go"

	"github.com/agentcortex/agentcortex-go/semantic"
)

// Store implements semantic.Backend over a Postgres database with the
// vector extension installed.
type Store struct {
	db   *sql.DB
	dims int
}

// New connects to Postgres at dsn and prepares the memories table for
// vectors of the given dimension count.
func New(dsn string, dims int) (*Store, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("pgvector: dimensions must be positive, got %d", dims)
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &Store{db: db, dims: dims}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("create extension: %w", err)
	}
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS agentcortex_memories (
		namespace  TEXT NOT NULL,
		id         TEXT NOT NULL,
		content    TEXT NOT NULL,
		metadata   JSONB NOT NULL DEFAULT '{}',
		embedding  vector(%d) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (namespace, id)
	)`, s.dims)
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, namespace string, e semantic.Entry) error {
	metaJSON, err := json.Marshal(e.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO agentcortex_memories (namespace, id, content, metadata, embedding)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (namespace, id) DO UPDATE
		 SET content = EXCLUDED.content, metadata = EXCLUDED.metadata, embedding = EXCLUDED.embedding`,
		namespace, e.ID, e.Content, metaJSON, pgv.NewVector(e.Embedding))
	if err != nil {
		return fmt.Errorf("upsert memory: %w", err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, namespace string, embedding []float32, n int) ([]semantic.Match, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT content, metadata, 1 - (embedding <=> $2) AS similarity
		 FROM agentcortex_memories
		 WHERE namespace = $1
		 ORDER BY embedding <=> $2
		 LIMIT $3`,
		namespace, pgv.NewVector(embedding), n)
	if err != nil {
		return nil, fmt.Errorf("query memories: %w", err)
	}
	defer rows.Close()

	var matches []semantic.Match
	for rows.Next() {
		var m semantic.Match
		var metaJSON []byte
		if err := rows.Scan(&m.Content, &metaJSON, &m.Similarity); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		if err := json.Unmarshal(metaJSON, &m.Metadata); err != nil {
			m.Metadata = map[string]string{}
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *Store) Clear(ctx context.Context, namespace string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM agentcortex_memories WHERE namespace = $1`, namespace)
	if err != nil {
		return fmt.Errorf("clear namespace: %w", err)
	}
	return nil
}

func (s *Store) Count(ctx context.Context, namespace string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM agentcortex_memories WHERE namespace = $1`, namespace).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return count, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
