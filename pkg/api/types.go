// Package api defines the wire types of the accounts service HTTP API.
// Both the server handlers and any Go clients share these definitions.
package api

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the body of POST /api/auth/refresh.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// AccountSummary is the public projection of an account embedded in
// register/login responses. The password hash is never serialized.
type AccountSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AuthResponse is returned by register (201) and login (200).
type AuthResponse struct {
	User    AccountSummary `json:"user"`
	Access  string         `json:"access"`
	Refresh string         `json:"refresh"`
}

// RefreshResponse is returned by a successful token refresh. The refresh
// token rotates on every use, so the caller must store the new one.
type RefreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// ProfileResponse is the full profile projection served by /api/auth/me.
type ProfileResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ProfilePatchRequest is the body of PATCH/PUT /api/auth/me. Nil pointers
// mean "leave unchanged". Immutable fields (id, email, username) present in
// a request body are simply not represented here and therefore ignored.
type ProfilePatchRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}
