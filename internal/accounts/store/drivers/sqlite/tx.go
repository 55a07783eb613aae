package sqlite

import (
	"context"
	"database/sql"

	"github.com/teamshiksha/accounts/internal/accounts/store"
)

// txStore is a transaction-scoped Store. Repositories share the same dbtx
// abstraction, so they run against the *sql.Tx transparently.
type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore { return &txStore{tx: tx} }

func (t *txStore) Accounts() store.Accounts           { return &accountsRepo{db: t.tx} }
func (t *txStore) RefreshTokens() store.RefreshTokens { return &refreshTokensRepo{db: t.tx} }

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Nested transactions are not supported.
func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, sql.ErrTxDone }

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

// ApplyMigrations is a no-op inside a transaction.
func (t *txStore) ApplyMigrations() error { return nil }

func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }
