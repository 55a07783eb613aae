package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/teamshiksha/accounts/internal/accounts/domain"
	"github.com/teamshiksha/accounts/internal/accounts/store"
	"github.com/teamshiksha/accounts/pkg/api"
	"github.com/teamshiksha/accounts/pkg/cryptox"
	"github.com/teamshiksha/accounts/pkg/idx"
	"github.com/teamshiksha/accounts/pkg/slogx"
)

// AccountService owns the account lifecycle: registration, credential
// verification, and profile reads/updates.
type AccountService struct {
	Store store.Store
}

// Register validates the credentials, allocates a username from the email
// local part, and creates the account. Validation failures are returned as
// api.FieldErrors with every failing reason included.
//
// The existence checks and the insert run in one transaction, with the
// unique indexes as the authority of last resort, so two concurrent
// registrations of the same email cannot both succeed.
func (s *AccountService) Register(ctx context.Context, email, password string) (domain.Account, error) {
	l := slogx.FromContext(ctx)

	var account domain.Account
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		errs := api.FieldErrors{}
		if err := ValidateEmail(ctx, email, tx.Accounts().EmailExists, errs); err != nil {
			return err
		}
		ValidatePassword(password, errs)
		if errs.HasErrors() {
			return errs
		}

		username, err := AllocateUsername(ctx, email, tx.Accounts().UsernameExists)
		if err != nil {
			return err
		}

		hash, err := cryptox.HashPassword(password)
		if err != nil {
			return err
		}

		account = domain.Account{
			ID:           idx.New().String(),
			Email:        email,
			Username:     username,
			PasswordHash: hash,
		}
		return tx.Accounts().CreateAccount(ctx, account)
	})
	if err != nil {
		// A unique violation here means a concurrent registration won the
		// race between our check and insert. Report it the same way the
		// upfront check would have.
		if errors.Is(err, store.ErrAlreadyExists) {
			errs := api.FieldErrors{}
			errs.Add("email", MsgEmailTaken)
			return domain.Account{}, errs
		}
		return domain.Account{}, err
	}

	l.Info("account registered",
		slog.String("account_id", account.ID),
		slog.String("username", account.Username),
	)
	return account, nil
}

// Authenticate verifies an email/password pair. Unknown email and wrong
// password are indistinguishable to the caller, both return
// ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (domain.Account, error) {
	account, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrInvalidCredentials
		}
		return domain.Account{}, err
	}

	if err := cryptox.VerifyPassword(password, account.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.Account{}, ErrInvalidCredentials
		}
		return domain.Account{}, err
	}

	return account, nil
}

// GetProfile returns the profile projection of an account.
func (s *AccountService) GetProfile(ctx context.Context, accountID string) (domain.Profile, error) {
	account, err := s.Store.Accounts().GetAccountByID(ctx, accountID)
	if err != nil {
		return domain.Profile{}, err
	}
	return domain.ProfileOf(account), nil
}

// UpdateProfile applies a partial update to the owner-mutable fields. Nil
// fields are left unchanged; email and username are immutable and ignored
// entirely. Returns the updated profile.
func (s *AccountService) UpdateProfile(ctx context.Context, accountID string, patch domain.ProfilePatch) (domain.Profile, error) {
	var profile domain.Profile
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		account, err := tx.Accounts().GetAccountByID(ctx, accountID)
		if err != nil {
			return err
		}

		firstName := account.FirstName
		lastName := account.LastName
		if patch.FirstName != nil {
			firstName = *patch.FirstName
		}
		if patch.LastName != nil {
			lastName = *patch.LastName
		}

		if err := tx.Accounts().UpdateName(ctx, account.ID, firstName, lastName); err != nil {
			return err
		}

		account.FirstName = firstName
		account.LastName = lastName
		profile = domain.ProfileOf(account)
		return nil
	})
	if err != nil {
		return domain.Profile{}, err
	}
	return profile, nil
}
