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

type RefreshHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP handles POST /api/auth/refresh. The presented refresh token is
// rotated, so the response always carries a new one.
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req api.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.ErrInvalidBody.WriteError(w)
		return
	}
	if req.Refresh == "" {
		api.ErrInvalidRefresh.WriteError(w)
		return
	}

	pair, err := h.TokenService.Refresh(ctx, req.Refresh)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			api.ErrInvalidRefresh.WriteError(w)
			return
		}
		log.Error("refresh failed", "err", err)
		api.ErrServerError.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, api.RefreshResponse{
		Access:  pair.AccessToken,
		Refresh: pair.RefreshToken,
	})
}
