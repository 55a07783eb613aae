package service

import (
	"context"
	"testing"
	"time"

	"github.com/teamshiksha/accounts/internal/accounts/domain"
	"github.com/teamshiksha/accounts/internal/accounts/store"
	"github.com/teamshiksha/accounts/internal/accounts/store/drivers/sqlite"
	"github.com/teamshiksha/accounts/pkg/api"
	"github.com/teamshiksha/accounts/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestServices(t *testing.T) (*AccountService, *TokenService) {
	t.Helper()

	st := newTestStore(t)
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: "accounts-test"})
	require.NoError(t, err)

	accounts := &AccountService{Store: st}
	tokens := &TokenService{
		KeyManager: km,
		Store:      st,
		Issuer:     "accounts-test",
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}
	return accounts, tokens
}

func TestRegister(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("creates account with username from email local part", func(t *testing.T) {
		accounts, _ := newTestServices(t)

		account, err := accounts.Register(ctx, "alice@example.com", "Password1")
		require.NoError(t, err)
		require.NotEmpty(t, account.ID)
		require.Equal(t, "alice@example.com", account.Email)
		require.Equal(t, "alice", account.Username)
		require.NotEqual(t, "Password1", account.PasswordHash)
	})

	t.Run("suffixes username on local part collision", func(t *testing.T) {
		accounts, _ := newTestServices(t)

		first, err := accounts.Register(ctx, "dave@one.example", "Password1")
		require.NoError(t, err)
		require.Equal(t, "dave", first.Username)

		second, err := accounts.Register(ctx, "dave@two.example", "Password1")
		require.NoError(t, err)
		require.Equal(t, "dave1", second.Username)

		third, err := accounts.Register(ctx, "dave@three.example", "Password1")
		require.NoError(t, err)
		require.Equal(t, "dave2", third.Username)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		accounts, _ := newTestServices(t)

		_, err := accounts.Register(ctx, "erin@example.com", "Password1")
		require.NoError(t, err)

		_, err = accounts.Register(ctx, "erin@example.com", "Password1")

		var errs api.FieldErrors
		require.ErrorAs(t, err, &errs)
		require.Equal(t, []string{MsgEmailTaken}, errs["email"])
	})

	t.Run("collects all field errors in one response", func(t *testing.T) {
		accounts, _ := newTestServices(t)

		_, err := accounts.Register(ctx, "not-an-email", "abc")

		var errs api.FieldErrors
		require.ErrorAs(t, err, &errs)
		require.Equal(t, []string{MsgEmailInvalid}, errs["email"])
		require.Equal(t, []string{
			MsgPasswordTooShort,
			MsgPasswordUppercase,
			MsgPasswordDigit,
		}, errs["password"])
	})

	t.Run("failed registration leaves no account behind", func(t *testing.T) {
		accounts, _ := newTestServices(t)

		_, err := accounts.Register(ctx, "frank@example.com", "short")
		require.Error(t, err)

		exists, err := accounts.Store.Accounts().EmailExists(ctx, "frank@example.com")
		require.NoError(t, err)
		require.False(t, exists)
	})
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("valid credentials return the account", func(t *testing.T) {
		accounts, _ := newTestServices(t)

		registered, err := accounts.Register(ctx, "grace@example.com", "Password1")
		require.NoError(t, err)

		account, err := accounts.Authenticate(ctx, "grace@example.com", "Password1")
		require.NoError(t, err)
		require.Equal(t, registered.ID, account.ID)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		accounts, _ := newTestServices(t)

		_, err := accounts.Register(ctx, "heidi@example.com", "Password1")
		require.NoError(t, err)

		_, errUnknown := accounts.Authenticate(ctx, "nobody@example.com", "Password1")
		_, errWrong := accounts.Authenticate(ctx, "heidi@example.com", "Wrong1one")

		require.ErrorIs(t, errUnknown, ErrInvalidCredentials)
		require.ErrorIs(t, errWrong, ErrInvalidCredentials)
		require.Equal(t, errUnknown.Error(), errWrong.Error())
	})
}

func TestProfile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("get returns the projection", func(t *testing.T) {
		accounts, _ := newTestServices(t)

		registered, err := accounts.Register(ctx, "ivan@example.com", "Password1")
		require.NoError(t, err)

		profile, err := accounts.GetProfile(ctx, registered.ID)
		require.NoError(t, err)
		require.Equal(t, registered.ID, profile.ID)
		require.Equal(t, "ivan", profile.Username)
		require.Equal(t, "ivan@example.com", profile.Email)
		require.Empty(t, profile.FirstName)
		require.Empty(t, profile.LastName)
	})

	t.Run("patch updates only provided fields", func(t *testing.T) {
		accounts, _ := newTestServices(t)

		registered, err := accounts.Register(ctx, "judy@example.com", "Password1")
		require.NoError(t, err)

		first := "Judy"
		profile, err := accounts.UpdateProfile(ctx, registered.ID, domainPatch(&first, nil))
		require.NoError(t, err)
		require.Equal(t, "Judy", profile.FirstName)
		require.Empty(t, profile.LastName)

		last := "Jetson"
		profile, err = accounts.UpdateProfile(ctx, registered.ID, domainPatch(nil, &last))
		require.NoError(t, err)
		require.Equal(t, "Judy", profile.FirstName)
		require.Equal(t, "Jetson", profile.LastName)
	})

	t.Run("patch can clear a field with an empty string", func(t *testing.T) {
		accounts, _ := newTestServices(t)

		registered, err := accounts.Register(ctx, "mallory@example.com", "Password1")
		require.NoError(t, err)

		first := "Mallory"
		_, err = accounts.UpdateProfile(ctx, registered.ID, domainPatch(&first, nil))
		require.NoError(t, err)

		empty := ""
		profile, err := accounts.UpdateProfile(ctx, registered.ID, domainPatch(&empty, nil))
		require.NoError(t, err)
		require.Empty(t, profile.FirstName)
	})

	t.Run("email and username never change", func(t *testing.T) {
		accounts, _ := newTestServices(t)

		registered, err := accounts.Register(ctx, "oscar@example.com", "Password1")
		require.NoError(t, err)

		first := "Oscar"
		profile, err := accounts.UpdateProfile(ctx, registered.ID, domainPatch(&first, nil))
		require.NoError(t, err)
		require.Equal(t, "oscar@example.com", profile.Email)
		require.Equal(t, "oscar", profile.Username)
	})

	t.Run("missing account yields not found", func(t *testing.T) {
		accounts, _ := newTestServices(t)

		_, err := accounts.GetProfile(ctx, "missing")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestTokenService(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	register := func(t *testing.T) (*AccountService, *TokenService, string) {
		t.Helper()
		accounts, tokens := newTestServices(t)
		account, err := accounts.Register(ctx, "peggy@example.com", "Password1")
		require.NoError(t, err)
		return accounts, tokens, account.ID
	}

	t.Run("issue returns a verifiable access token", func(t *testing.T) {
		accounts, tokens, accountID := register(t)

		account, err := accounts.Store.Accounts().GetAccountByID(ctx, accountID)
		require.NoError(t, err)

		pair, err := tokens.Issue(ctx, account)
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)

		claims, err := tokens.KeyManager.Verifier.Verify(pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, accountID, claims.Subject)
		require.Equal(t, "peggy", claims.Username)
		require.Equal(t, "peggy@example.com", claims.Email)
	})

	t.Run("refresh rotates the refresh token", func(t *testing.T) {
		accounts, tokens, accountID := register(t)

		account, err := accounts.Store.Accounts().GetAccountByID(ctx, accountID)
		require.NoError(t, err)

		pair, err := tokens.Issue(ctx, account)
		require.NoError(t, err)

		rotated, err := tokens.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

		// The old token cannot be redeemed twice.
		_, err = tokens.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)

		// The new one still works.
		_, err = tokens.Refresh(ctx, rotated.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("unknown refresh token is rejected", func(t *testing.T) {
		_, tokens, _ := register(t)

		_, err := tokens.Refresh(ctx, "garbage")
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("expired refresh token is rejected", func(t *testing.T) {
		accounts, tokens, accountID := register(t)
		tokens.RefreshTTL = -time.Minute

		account, err := accounts.Store.Accounts().GetAccountByID(ctx, accountID)
		require.NoError(t, err)

		pair, err := tokens.Issue(ctx, account)
		require.NoError(t, err)

		_, err = tokens.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("revoked refresh token is rejected", func(t *testing.T) {
		accounts, tokens, accountID := register(t)

		account, err := accounts.Store.Accounts().GetAccountByID(ctx, accountID)
		require.NoError(t, err)

		pair, err := tokens.Issue(ctx, account)
		require.NoError(t, err)

		require.NoError(t, tokens.Revoke(ctx, pair.RefreshToken))
		_, err = tokens.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})
}

func TestHousekeeping(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	accounts, tokens := newTestServices(t)

	account, err := accounts.Register(ctx, "trent@example.com", "Password1")
	require.NoError(t, err)

	tokens.RefreshTTL = -time.Minute
	_, err = tokens.Issue(ctx, account)
	require.NoError(t, err)

	n, err := accounts.Store.RefreshTokens().DeleteExpiredRefreshTokens(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func domainPatch(first, last *string) domain.ProfilePatch {
	return domain.ProfilePatch{FirstName: first, LastName: last}
}
