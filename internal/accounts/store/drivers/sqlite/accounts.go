package sqlite

import (
	"context"
	"time"

	"github.com/teamshiksha/accounts/internal/accounts/domain"
)

type accountsRepo struct {
	db dbtx
}

const accountColumns = `id, email, username, password_hash, first_name, last_name, created_at, updated_at`

func (r *accountsRepo) scanAccount(row interface{ Scan(...any) error }) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.ID,
		&a.Email,
		&a.Username,
		&a.PasswordHash,
		&a.FirstName,
		&a.LastName,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	return r.scanAccount(row)
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = ?`, email)
	return r.scanAccount(row)
}

func (r *accountsRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM accounts WHERE email = ?`, email).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *accountsRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM accounts WHERE username = ?`, username).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.Email,
		a.Username,
		a.PasswordHash,
		a.FirstName,
		a.LastName,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *accountsRepo) UpdateName(ctx context.Context, accountID, firstName, lastName string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET first_name = ?, last_name = ?, updated_at = ? WHERE id = ?`,
		firstName,
		lastName,
		time.Now().UTC(),
		accountID,
	)
	return err
}
