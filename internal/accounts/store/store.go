package store

import (
	"context"
	"errors"

	"github.com/teamshiksha/accounts/internal/accounts/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Accounts() Accounts
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction. If fn returns an
	// error the transaction is rolled back, otherwise it is committed.
	// This is the recommended way to handle transactions.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	// GetAccountByID returns an account by id.
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByEmail is used during login.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// EmailExists reports whether an account with this email exists.
	EmailExists(ctx context.Context, email string) (bool, error)

	// UsernameExists reports whether an account with this username exists.
	UsernameExists(ctx context.Context, username string) (bool, error)

	// CreateAccount inserts a new account (id is provided by app via ULID).
	// The unique indexes on email and username are the authority of last
	// resort for uniqueness; violations surface as ErrAlreadyExists.
	CreateAccount(ctx context.Context, a domain.Account) error

	// UpdateName mutates first_name/last_name and bumps updated_at.
	UpdateName(ctx context.Context, accountID, firstName, lastName string) error
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the token by its SHA-256 fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken flips revoked=1, sets updated_at.
	RevokeRefreshToken(ctx context.Context, hash string) error

	// DeleteExpiredRefreshTokens is housekeeping; returns rows removed.
	DeleteExpiredRefreshTokens(ctx context.Context) (int64, error)
}
