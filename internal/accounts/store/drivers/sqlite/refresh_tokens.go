package sqlite

import (
	"context"
	"time"

	"github.com/teamshiksha/accounts/internal/accounts/domain"
	"github.com/teamshiksha/accounts/internal/accounts/store"
)

type refreshTokensRepo struct {
	db dbtx
}

const refreshTokenColumns = `id, account_id, token_hash, expires_at, revoked, created_at, updated_at`

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (`+refreshTokenColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.AccountID,
		t.TokenHash,
		t.ExpiresAt,
		t.Revoked,
		t.CreatedAt,
		t.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+refreshTokenColumns+` FROM refresh_tokens WHERE token_hash = ?`, hash)

	var t domain.RefreshToken
	err := row.Scan(
		&t.ID,
		&t.AccountID,
		&t.TokenHash,
		&t.ExpiresAt,
		&t.Revoked,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, hash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1, updated_at = ? WHERE token_hash = ?`,
		time.Now().UTC(),
		hash,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < ? OR revoked = 1`,
		time.Now().UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
