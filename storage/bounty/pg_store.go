package bounty

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore persists the replicated view in Postgres. The view is a flat
// keyed store, so a single kv table with a JSONB value column is the whole
// schema.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore connects and initializes the schema.
func NewPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s := &PGStore{pool: pool}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PGStore) initSchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS bounty_kv (
  key TEXT PRIMARY KEY,
  value JSONB NOT NULL
);
`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Get returns the value stored under key, or nil when absent.
func (s *PGStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM bounty_kv WHERE key = $1`, key).Scan(&value)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// Put stores value under key. A nil value clears the key.
func (s *PGStore) Put(ctx context.Context, key string, value json.RawMessage) error {
	if value == nil {
		if _, err := s.pool.Exec(ctx, `DELETE FROM bounty_kv WHERE key = $1`, key); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
		return nil
	}
	_, err := s.pool.Exec(ctx, `
INSERT INTO bounty_kv (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
`, key, []byte(value))
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Close shuts down the pool.
func (s *PGStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
