package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/teamshiksha/accounts/internal/accounts/domain"
	"github.com/teamshiksha/accounts/internal/accounts/service"
	"github.com/teamshiksha/accounts/internal/accounts/store"
	"github.com/teamshiksha/accounts/pkg/api"
	"github.com/teamshiksha/accounts/pkg/httpx"
	"github.com/teamshiksha/accounts/pkg/slogx"
)

// ProfileHandler serves the authenticated account's own profile. The account
// identity always comes from the verified token, never from the URL.
type ProfileHandler struct {
	AccountService *service.AccountService
}

// HandleGet handles GET /api/auth/me.
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	accountID, ok := httpx.AccountIDFromContext(ctx)
	if !ok {
		api.ErrInvalidToken.WriteError(w)
		return
	}

	profile, err := h.AccountService.GetProfile(ctx, accountID)
	if err != nil {
		// A valid token for a deleted account is still unauthorized.
		if errors.Is(err, store.ErrNotFound) {
			api.ErrInvalidToken.WriteError(w)
			return
		}
		log.Error("failed to load profile", "account_id", accountID, "err", err)
		api.ErrServerError.WriteError(w)
		return
	}

	writeProfile(w, profile)
}

// HandlePatch handles PATCH and PUT /api/auth/me. Both apply partial
// semantics: absent fields are left unchanged, unknown and immutable fields
// are ignored.
func (h *ProfileHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	accountID, ok := httpx.AccountIDFromContext(ctx)
	if !ok {
		api.ErrInvalidToken.WriteError(w)
		return
	}

	var req api.ProfilePatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.ErrInvalidBody.WriteError(w)
		return
	}

	patch := domain.ProfilePatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}

	profile, err := h.AccountService.UpdateProfile(ctx, accountID, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.ErrInvalidToken.WriteError(w)
			return
		}
		log.Error("failed to update profile", "account_id", accountID, "err", err)
		api.ErrServerError.WriteError(w)
		return
	}

	writeProfile(w, profile)
}

func writeProfile(w http.ResponseWriter, p domain.Profile) {
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, api.ProfileResponse{
		ID:        p.ID,
		Username:  p.Username,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
	})
}
