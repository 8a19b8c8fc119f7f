package http

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/utafrali/WebmailGo/internal/provider"
	"github.com/utafrali/WebmailGo/internal/service"
)

const (
	stateCookieName = "__oauth_state"
	stateTTL        = 5 * time.Minute
)

// OAuthHandler handles the federated login redirect and callback.
type OAuthHandler struct {
	service      *service.AuthService
	provider     provider.OAuthProvider
	frontendURL  string
	secureCookie bool
	logger       *slog.Logger
}

// NewOAuthHandler creates a handler for the given external identity provider.
// Tokens from a successful callback are delivered by redirecting to
// frontendURL/login with the tokens in the query string.
func NewOAuthHandler(svc *service.AuthService, p provider.OAuthProvider, frontendURL string, secureCookie bool, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{
		service:      svc,
		provider:     p,
		frontendURL:  frontendURL,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// Redirect handles GET /api/v1/auth/google. It sets an anti-forgery state
// cookie and sends the browser to the provider's consent page.
func (h *OAuthHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	state := newState()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(stateTTL.Seconds()),
	})

	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// Callback handles GET /api/v1/auth/google/callback. It validates the state,
// exchanges the code for a verified identity, logs the user in, and redirects
// to the frontend with the issued tokens.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if !validState(r) {
		writeJSON(w, http.StatusForbidden, response{
			Error: &errorResponse{Code: "FORBIDDEN", Message: "invalid oauth state"},
		})
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusForbidden, response{
			Error: &errorResponse{Code: "FORBIDDEN", Message: "missing authorization code"},
		})
		return
	}

	identity, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "oauth code exchange failed",
			slog.String("provider", h.provider.Name()),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusForbidden, response{
			Error: &errorResponse{Code: "FORBIDDEN", Message: "identity verification failed"},
		})
		return
	}

	_, tokens, err := h.service.LoginGoogle(r.Context(), identity.ProviderUserID, identity.Email)
	if err != nil {
		writeAppError(w, err)
		return
	}

	// Expire the state cookie now that the flow is complete.
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	redirect := fmt.Sprintf("%s/login?access_token=%s&refresh_token=%s",
		h.frontendURL,
		url.QueryEscape(tokens.AccessToken),
		url.QueryEscape(tokens.RefreshToken),
	)
	http.Redirect(w, r, redirect, http.StatusFound)
}

// newState returns a fresh random anti-forgery state value.
func newState() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// validState compares the state query parameter against the state cookie.
func validState(r *http.Request) bool {
	state := r.URL.Query().Get("state")
	if state == "" {
		return false
	}

	cookie, err := r.Cookie(stateCookieName)
	if err != nil {
		return false
	}

	return cookie.Value == state
}
