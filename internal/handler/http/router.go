package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/WebmailGo/internal/auth"
	"github.com/utafrali/WebmailGo/internal/service"
	"github.com/utafrali/WebmailGo/pkg/health"
	"github.com/utafrali/WebmailGo/pkg/middleware"
)

// NewRouter creates a chi router with all auth service routes registered.
// oauthHandler may be nil when no federated provider is configured; the
// /google routes are simply not mounted then.
func NewRouter(
	authService *service.AuthService,
	jwtManager *auth.JWTManager,
	oauthHandler *OAuthHandler,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig middleware.CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Tracing("auth"))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("auth"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	authHandler := NewAuthHandler(authService, logger)

	// Token validator bridging to the internal JWTManager.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Email:  claims.Email,
		}, nil
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		// Public endpoints. Refresh carries its own credential (the
		// refresh JWT), so it does not run behind the access-token
		// middleware.
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)

			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// Refresh has no JSON body; the credential travels in the
		// Authorization header.
		r.Post("/refresh", authHandler.Refresh)

		// Federated login (browser redirect flow, no JSON body).
		if oauthHandler != nil {
			r.Get("/google", oauthHandler.Redirect)
			r.Get("/google/callback", oauthHandler.Callback)
		}

		// Endpoints requiring a valid access token.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))

			r.Post("/logout", authHandler.Logout)
			r.Get("/profile", authHandler.Profile)
		})
	})

	return r
}
