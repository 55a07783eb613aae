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

type RegisterHandler struct {
	AccountService *service.AccountService
	TokenService   *service.TokenService
}

// ServeHTTP handles POST /api/auth/register. On success the new account is
// returned together with a fresh token pair, so the client is signed in
// immediately.
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.ErrInvalidBody.WriteError(w)
		return
	}

	account, err := h.AccountService.Register(ctx, req.Email, req.Password)
	if err != nil {
		var fieldErrs api.FieldErrors
		if errors.As(err, &fieldErrs) {
			fieldErrs.WriteError(w)
			return
		}
		log.Error("registration failed", "err", err)
		api.ErrServerError.WriteError(w)
		return
	}

	pair, err := h.TokenService.Issue(ctx, account)
	if err != nil {
		log.Error("token issue after registration failed", "account_id", account.ID, "err", err)
		api.ErrServerError.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, api.AuthResponse{
		User: api.AccountSummary{
			ID:       account.ID,
			Username: account.Username,
			Email:    account.Email,
		},
		Access:  pair.AccessToken,
		Refresh: pair.RefreshToken,
	})
}
