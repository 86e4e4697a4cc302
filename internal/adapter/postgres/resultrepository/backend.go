// package resultrepository contains the PostgreSQL implementation of the
// key-value backend
package resultrepository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"gitlab.com/dse-2025.net/internal/core/ports/primary"
	"gitlab.com/dse-2025.net/internal/core/ports/secondary"
	"gitlab.com/dse-2025.net/internal/static/errs"
)

var _ secondary.KeyValueBackend = (*PostgresBackend)(nil)

const createTableStmt = `
	CREATE TABLE IF NOT EXISTS results (
		store_id TEXT  NOT NULL,
		key      TEXT  NOT NULL,
		value    BYTEA NOT NULL,
		PRIMARY KEY (store_id, key)
	)
`

const upsertStmt = `
	INSERT INTO results (store_id, key, value)
	VALUES ($1, $2, $3)
	ON CONFLICT (store_id, key) DO UPDATE SET
		value = EXCLUDED.value
`

// PostgresBackend implements the KeyValueBackend interface with PostgreSQL.
// Every row is scoped to a store id so several explorations can share one
// table. Writes are durable on commit, so Flush is a no-op.
type PostgresBackend struct {
	db      *sqlx.DB
	logger  primary.Logger
	storeID string
}

// NewPostgresBackend verifies the connection and ensures the results table
// exists.
func NewPostgresBackend(ctx context.Context, db *sqlx.DB, storeID string, logger primary.Logger) (*PostgresBackend, error) {
	if err := db.PingContext(ctx); err != nil {
		logger.Error("Failed to connect to Postgres database", "error", err)
		return nil, fmt.Errorf("%w: %v", errs.ErrBackendConnection, err)
	}
	if _, err := db.ExecContext(ctx, createTableStmt); err != nil {
		return nil, fmt.Errorf("failed to create the results table: %w", err)
	}

	return &PostgresBackend{
		db:      db,
		logger:  logger,
		storeID: storeID,
	}, nil
}

func (b *PostgresBackend) GetAll(ctx context.Context) (map[string][]byte, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT key, value FROM results WHERE store_id = $1`, b.storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to dump the database: %w", err)
	}
	defer rows.Close()

	dump := make(map[string][]byte)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan a result row: %w", err)
		}
		dump[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to dump the database: %w", err)
	}
	return dump, nil
}

func (b *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.db.QueryRowContext(ctx,
		`SELECT value FROM results WHERE store_id = $1 AND key = $2`,
		b.storeID, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

func (b *PostgresBackend) BatchGet(ctx context.Context, keys []string) ([][]byte, error) {
	raws := make([][]byte, len(keys))
	for i, key := range keys {
		raw, err := b.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		raws[i] = raw
	}
	return raws, nil
}

func (b *PostgresBackend) Set(ctx context.Context, key string, value []byte) error {
	if _, err := b.db.ExecContext(ctx, upsertStmt, b.storeID, key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// BatchSet upserts all pairs in a single transaction, so a partial batch
// never becomes visible.
func (b *PostgresBackend) BatchSet(ctx context.Context, pairs map[string][]byte) (int, error) {
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin the batch transaction: %w", err)
	}

	for key, value := range pairs {
		if _, err := tx.ExecContext(ctx, upsertStmt, b.storeID, key, value); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit the batch transaction: %w", err)
	}
	return len(pairs), nil
}

func (b *PostgresBackend) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := b.db.SelectContext(ctx, &keys,
		`SELECT key FROM results WHERE store_id = $1`, b.storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}

func (b *PostgresBackend) Count(ctx context.Context) (int, error) {
	var count int
	err := b.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM results WHERE store_id = $1`, b.storeID)
	if err != nil {
		return 0, fmt.Errorf("failed to count keys: %w", err)
	}
	return count, nil
}

// Flush is a no-op: PostgreSQL is durable on every committed write.
func (b *PostgresBackend) Flush(ctx context.Context) error {
	return nil
}

// Close is a no-op; the *sqlx.DB handle is owned by the caller.
func (b *PostgresBackend) Close(ctx context.Context) error {
	return nil
}
