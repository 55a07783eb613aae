package domain

import "time"

// Account is the sole entity of the service: a single user's identity
// record. Email and Username are unique and never change after creation.
type Account struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string // argon2id encoded, never serialized
	FirstName    string
	LastName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RefreshToken is the persisted record of an opaque refresh token. Only the
// SHA-256 fingerprint of the token is stored.
type RefreshToken struct {
	ID        string
	AccountID string
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TokenPair is a freshly issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
}

// Profile is the read-only projection of an account served to its owner.
type Profile struct {
	ID        string
	Username  string
	Email     string
	FirstName string
	LastName  string
}

// ProfilePatch is a partial update of the owner-mutable profile fields.
// Nil means "leave unchanged".
type ProfilePatch struct {
	FirstName *string
	LastName  *string
}

// ProfileOf returns the profile projection of an account.
func ProfileOf(a Account) Profile {
	return Profile{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
	}
}
