package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/teamshiksha/accounts/internal/accounts/service"
	"github.com/teamshiksha/accounts/internal/accounts/store"
	"github.com/teamshiksha/accounts/pkg/httpx"
	"github.com/teamshiksha/accounts/pkg/jwtx"
	"github.com/teamshiksha/accounts/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     *jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store          store.Store
	AccountService *service.AccountService
	TokenService   *service.TokenService
}

func NewRouter(
	verifier *jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerProfile()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	registerHandler := &RegisterHandler{
		AccountService: r.AccountService,
		TokenService:   r.TokenService,
	}
	loginHandler := &LoginHandler{
		AccountService: r.AccountService,
		TokenService:   r.TokenService,
	}
	refreshHandler := &RefreshHandler{TokenService: r.TokenService}

	// Credential endpoints are the brute force surface, strict by IP.
	r.Mux.Handle("POST /api/auth/register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Refresh carries its own credential in the body, moderate by IP.
	r.Mux.Handle("POST /api/auth/refresh",
		httpx.Chain(refreshHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerProfile() {
	h := &ProfileHandler{AccountService: r.AccountService}

	read := httpx.Chain(http.HandlerFunc(h.HandleGet),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByAccount(httpx.LenientLimit),
	)
	write := httpx.Chain(http.HandlerFunc(h.HandlePatch),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByAccount(httpx.ModerateLimit),
	)

	r.Mux.Handle("GET /api/auth/me", read)
	r.Mux.Handle("PATCH /api/auth/me", write)
	// PUT is accepted as an alias with the same partial semantics.
	r.Mux.Handle("PUT /api/auth/me", write)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.verifier))
}
