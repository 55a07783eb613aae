package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/teamshiksha/accounts/internal/accounts/domain"
	"github.com/teamshiksha/accounts/internal/accounts/store"
	"github.com/teamshiksha/accounts/pkg/cryptox"
	"github.com/teamshiksha/accounts/pkg/idx"
	"github.com/teamshiksha/accounts/pkg/jwtx"
	"github.com/teamshiksha/accounts/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
)

// TokenService issues and rotates token pairs. Access tokens are EdDSA
// signed JWTs; refresh tokens are opaque and persisted by their SHA-256
// fingerprint only.
type TokenService struct {
	KeyManager *jwtx.KeyManager
	Store      store.Store
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Issue creates a fresh access/refresh pair for an account. Used after
// registration and login.
func (s *TokenService) Issue(ctx context.Context, account domain.Account) (*domain.TokenPair, error) {
	now := time.Now()

	accessToken, err := s.signAccess(account, now)
	if err != nil {
		return nil, err
	}

	refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	rt := domain.RefreshToken{
		ID:        idx.New().String(),
		AccountID: account.ID,
		TokenHash: cryptox.FingerprintToken(refreshOpaque),
		ExpiresAt: now.Add(s.RefreshTTL),
	}
	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshOpaque,
		ExpiresIn:    s.AccessTTL,
	}, nil
}

// Refresh exchanges a valid refresh token for a new pair. The presented
// token is revoked and a new one created in the same transaction, so a
// token can never be redeemed twice.
func (s *TokenService) Refresh(ctx context.Context, refreshOpaque string) (*domain.TokenPair, error) {
	now := time.Now()
	l := slogx.FromContext(ctx)

	fp := cryptox.FingerprintToken(refreshOpaque)
	rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	if rt.Revoked || now.After(rt.ExpiresAt) {
		return nil, ErrInvalidRefresh
	}

	account, err := s.Store.Accounts().GetAccountByID(ctx, rt.AccountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	accessToken, err := s.signAccess(account, now)
	if err != nil {
		return nil, err
	}

	newOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	newRT := domain.RefreshToken{
		ID:        idx.New().String(),
		AccountID: account.ID,
		TokenHash: cryptox.FingerprintToken(newOpaque),
		ExpiresAt: now.Add(s.RefreshTTL),
	}

	// Rotate atomically: revoke the presented token and create the new one.
	if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, fp); err != nil {
			return err
		}
		return tx.RefreshTokens().CreateRefreshToken(ctx, newRT)
	}); err != nil {
		return nil, err
	}

	l.Debug("refresh token rotated", slog.String("account_id", account.ID))

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newOpaque,
		ExpiresIn:    s.AccessTTL,
	}, nil
}

// Revoke invalidates a single refresh token by its opaque value.
func (s *TokenService) Revoke(ctx context.Context, refreshOpaque string) error {
	fp := cryptox.FingerprintToken(refreshOpaque)
	err := s.Store.RefreshTokens().RevokeRefreshToken(ctx, fp)
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvalidRefresh
	}
	return err
}

func (s *TokenService) signAccess(account domain.Account, now time.Time) (string, error) {
	claims := jwtx.NewAccessClaims(
		account.ID,
		s.AccessTTL,
		s.Issuer,
		account.Username,
		account.Email,
		now,
	)
	return s.KeyManager.GetSigner().Sign(claims)
}
