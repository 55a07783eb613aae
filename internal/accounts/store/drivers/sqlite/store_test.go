package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/teamshiksha/accounts/internal/accounts/domain"
	"github.com/teamshiksha/accounts/internal/accounts/store"
	"github.com/teamshiksha/accounts/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testAccount(email, username string) domain.Account {
	return domain.Account{
		ID:           idx.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		FirstName:    "Test",
		LastName:     "User",
	}
}

func TestAccountsRepo(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("create and fetch by id and email", func(t *testing.T) {
		s := newTestStore(t)

		a := testAccount("alice@example.com", "alice")
		require.NoError(t, s.Accounts().CreateAccount(ctx, a))

		byID, err := s.Accounts().GetAccountByID(ctx, a.ID)
		require.NoError(t, err)
		require.Equal(t, a.Email, byID.Email)
		require.Equal(t, a.Username, byID.Username)
		require.False(t, byID.CreatedAt.IsZero())

		byEmail, err := s.Accounts().GetAccountByEmail(ctx, a.Email)
		require.NoError(t, err)
		require.Equal(t, a.ID, byEmail.ID)
	})

	t.Run("missing account yields ErrNotFound", func(t *testing.T) {
		s := newTestStore(t)

		_, err := s.Accounts().GetAccountByID(ctx, "nope")
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = s.Accounts().GetAccountByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate email yields ErrAlreadyExists", func(t *testing.T) {
		s := newTestStore(t)

		require.NoError(t, s.Accounts().CreateAccount(ctx, testAccount("bob@example.com", "bob")))
		err := s.Accounts().CreateAccount(ctx, testAccount("bob@example.com", "bob2"))
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("duplicate username yields ErrAlreadyExists", func(t *testing.T) {
		s := newTestStore(t)

		require.NoError(t, s.Accounts().CreateAccount(ctx, testAccount("carol@example.com", "carol")))
		err := s.Accounts().CreateAccount(ctx, testAccount("carol2@example.com", "carol"))
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("existence checks", func(t *testing.T) {
		s := newTestStore(t)

		require.NoError(t, s.Accounts().CreateAccount(ctx, testAccount("dave@example.com", "dave")))

		exists, err := s.Accounts().EmailExists(ctx, "dave@example.com")
		require.NoError(t, err)
		require.True(t, exists)

		exists, err = s.Accounts().EmailExists(ctx, "other@example.com")
		require.NoError(t, err)
		require.False(t, exists)

		exists, err = s.Accounts().UsernameExists(ctx, "dave")
		require.NoError(t, err)
		require.True(t, exists)

		exists, err = s.Accounts().UsernameExists(ctx, "dave1")
		require.NoError(t, err)
		require.False(t, exists)
	})

	t.Run("update name bumps updated_at", func(t *testing.T) {
		s := newTestStore(t)

		a := testAccount("erin@example.com", "erin")
		require.NoError(t, s.Accounts().CreateAccount(ctx, a))

		before, err := s.Accounts().GetAccountByID(ctx, a.ID)
		require.NoError(t, err)

		time.Sleep(5 * time.Millisecond)
		require.NoError(t, s.Accounts().UpdateName(ctx, a.ID, "Erin", "Example"))

		after, err := s.Accounts().GetAccountByID(ctx, a.ID)
		require.NoError(t, err)
		require.Equal(t, "Erin", after.FirstName)
		require.Equal(t, "Example", after.LastName)
		require.True(t, after.UpdatedAt.After(before.UpdatedAt))
		require.Equal(t, before.Email, after.Email)
		require.Equal(t, before.Username, after.Username)
	})
}

func TestRefreshTokensRepo(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	seedToken := func(t *testing.T, s *Store, hash string, expiresAt time.Time) domain.RefreshToken {
		t.Helper()

		a := testAccount(hash+"@example.com", "u"+hash[:8])
		require.NoError(t, s.Accounts().CreateAccount(ctx, a))

		tok := domain.RefreshToken{
			ID:        idx.New().String(),
			AccountID: a.ID,
			TokenHash: hash,
			ExpiresAt: expiresAt,
		}
		require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, tok))
		return tok
	}

	t.Run("create and fetch by hash", func(t *testing.T) {
		s := newTestStore(t)

		tok := seedToken(t, s, "aaaaaaaahash1", time.Now().Add(time.Hour))

		got, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, tok.TokenHash)
		require.NoError(t, err)
		require.Equal(t, tok.AccountID, got.AccountID)
		require.False(t, got.Revoked)
	})

	t.Run("unknown hash yields ErrNotFound", func(t *testing.T) {
		s := newTestStore(t)

		_, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, "missing")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("revoke flips the flag", func(t *testing.T) {
		s := newTestStore(t)

		tok := seedToken(t, s, "bbbbbbbbhash2", time.Now().Add(time.Hour))
		require.NoError(t, s.RefreshTokens().RevokeRefreshToken(ctx, tok.TokenHash))

		got, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, tok.TokenHash)
		require.NoError(t, err)
		require.True(t, got.Revoked)

		err = s.RefreshTokens().RevokeRefreshToken(ctx, "missing")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("housekeeping removes expired and revoked rows", func(t *testing.T) {
		s := newTestStore(t)

		seedToken(t, s, "cccccccchash3", time.Now().Add(-time.Hour))
		revoked := seedToken(t, s, "ddddddddhash4", time.Now().Add(time.Hour))
		live := seedToken(t, s, "eeeeeeeehash5", time.Now().Add(time.Hour))
		require.NoError(t, s.RefreshTokens().RevokeRefreshToken(ctx, revoked.TokenHash))

		n, err := s.RefreshTokens().DeleteExpiredRefreshTokens(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 2, n)

		_, err = s.RefreshTokens().GetRefreshTokenByHash(ctx, live.TokenHash)
		require.NoError(t, err)
	})
}

func TestTransactions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("WithTx commits on success", func(t *testing.T) {
		s := newTestStore(t)

		a := testAccount("frank@example.com", "frank")
		err := s.WithTx(ctx, func(tx store.Tx) error {
			return tx.Accounts().CreateAccount(ctx, a)
		})
		require.NoError(t, err)

		_, err = s.Accounts().GetAccountByID(ctx, a.ID)
		require.NoError(t, err)
	})

	t.Run("WithTx rolls back on error", func(t *testing.T) {
		s := newTestStore(t)

		a := testAccount("grace@example.com", "grace")
		err := s.WithTx(ctx, func(tx store.Tx) error {
			if err := tx.Accounts().CreateAccount(ctx, a); err != nil {
				return err
			}
			return context.Canceled
		})
		require.ErrorIs(t, err, context.Canceled)

		_, err = s.Accounts().GetAccountByID(ctx, a.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}
