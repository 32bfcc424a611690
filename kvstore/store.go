// Package kvstore provides the durable key/value capability the proofs
// engine is built against (spec §6), backed by a single SQL table in a
// pure-Go, cgo-free SQLite engine — the teacher's own preference for a
// portable embedded store (modernc.org/sqlite sits in its go.mod alongside
// the cgo-bound mdbx-go it uses for its own primary database).
package kvstore

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS proof_kv (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
);
`

// Store is a proofs.Store backed by a local SQLite file (or :memory:).
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite-backed store at path. Use ":memory:" for
// an ephemeral store, e.g. in tests or a one-shot CLI invocation.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening kv store %q", path)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating proof_kv table")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns nil, nil on a missing key, matching proofs.Store's contract.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM proof_kv WHERE key = ?`, key)
	var value []byte
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "kv get %q", key)
	}
	return value, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO proof_kv(key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return errors.Wrapf(err, "kv put %q", key)
	}
	return nil
}
