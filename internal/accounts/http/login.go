package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/teamshiksha/accounts/internal/accounts/service"
	"github.com/teamshiksha/accounts/pkg/api"
	"github.com/teamshiksha/accounts/pkg/httpx"
	"github.com/teamshiksha/accounts/pkg/slogx"
)

// msgInvalidCredentials deliberately does not distinguish an unknown email
// from a wrong password.
const msgInvalidCredentials = "Invalid email or password"

type LoginHandler struct {
	AccountService *service.AccountService
	TokenService   *service.TokenService
}

// ServeHTTP handles POST /api/auth/login.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.ErrInvalidBody.WriteError(w)
		return
	}

	account, err := h.AccountService.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			errs := api.FieldErrors{}
			errs.Add("non_field_errors", msgInvalidCredentials)
			errs.WriteError(w)
			return
		}
		log.Error("login failed", "err", err)
		api.ErrServerError.WriteError(w)
		return
	}

	pair, err := h.TokenService.Issue(ctx, account)
	if err != nil {
		log.Error("token issue after login failed", "account_id", account.ID, "err", err)
		api.ErrServerError.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, api.AuthResponse{
		User: api.AccountSummary{
			ID:       account.ID,
			Username: account.Username,
			Email:    account.Email,
		},
		Access:  pair.AccessToken,
		Refresh: pair.RefreshToken,
	})
}
