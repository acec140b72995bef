package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/handoff/internal/handoff/service"
	"github.com/aussiebroadwan/handoff/internal/handoff/store"
	"github.com/aussiebroadwan/handoff/pkg/httpx"
	"github.com/aussiebroadwan/handoff/pkg/slogx"

	_ "github.com/aussiebroadwan/handoff/internal/handoff/docs" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store   store.Store
	limiter httpx.Limiter
	authn   *SessionAuthenticator

	HandoffService *service.HandoffService
	IssuerService  *service.IssuerService

	// DirectCookie enables POST /v1/handoff/token.
	DirectCookie bool
	Cookie       CookieConfig
}

func NewRouter(
	st store.Store,
	limiter httpx.Limiter,
	sessions service.SessionVerifier,
	buildVersion string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		limiter:      limiter,
		authn:        &SessionAuthenticator{Verifier: sessions},
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerHandoff()
	r.registerScopes()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Handoff Service API
//	@version		0.1.0
//	@description	Short-lived HS256 handoff tokens for moving a signed-in portal user into a downstream application.
//	@description
//	@description				Tokens are delivered through a one-time state handle redeemed by the destination.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/handoff
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Identity provider session credential. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerHandoff() {
	// POST /state - strict limit by IP, checked before the identity provider is called
	stateHandler := &StateHandler{HandoffService: r.HandoffService}
	r.Mux.Handle("POST /v1/handoff/state",
		httpx.Chain(stateHandler,
			httpx.RateLimitByIP(r.limiter, httpx.IssuePolicy),
			httpx.AuthnMiddleware(r.authn, authErrorWriter("handoff.state")),
		),
	)

	// POST /exchange - unauthenticated, the state handle is the credential
	exchangeHandler := &ExchangeHandler{HandoffService: r.HandoffService}
	r.Mux.Handle("POST /v1/handoff/exchange",
		httpx.Chain(exchangeHandler,
			httpx.RateLimitByIP(r.limiter, httpx.ExchangePolicy),
		),
	)

	// POST /token - direct cookie flow, shares the issue budget with /state
	tokenHandler := &TokenHandler{
		IssuerService: r.IssuerService,
		Cookie:        r.Cookie,
		Enabled:       r.DirectCookie,
	}
	r.Mux.Handle("POST /v1/handoff/token",
		httpx.Chain(tokenHandler,
			httpx.RateLimitByIP(r.limiter, httpx.IssuePolicy),
			httpx.AuthnMiddleware(r.authn, authErrorWriter("handoff.token")),
		),
	)
}

func (r *Router) registerScopes() {
	h := &ScopesHandler{IssuerService: r.IssuerService}

	// GET /scopes - dashboard polling, most permissive limit
	r.Mux.Handle("GET /v1/scopes",
		httpx.Chain(h,
			httpx.RateLimitByIP(r.limiter, httpx.ListPolicy),
			httpx.AuthnMiddleware(r.authn, authErrorWriter("scopes.list")),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.limiter, httpx.HealthPolicy),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(r.limiter, httpx.HealthPolicy),
		),
	)
}
