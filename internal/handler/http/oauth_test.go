package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/WebmailGo/internal/domain"
	"github.com/utafrali/WebmailGo/internal/provider"
	apperrors "github.com/utafrali/WebmailGo/pkg/errors"
)

// fakeProvider implements provider.OAuthProvider without network calls.
type fakeProvider struct {
	identity *provider.Identity
	err      error
}

func (p *fakeProvider) Name() string { return "google" }

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/authorize?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Exchange(ctx context.Context, code string) (*provider.Identity, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.identity, nil
}

func oauthTestHandler(userRepo *mockUserRepo, p provider.OAuthProvider) *OAuthHandler {
	svc := authTestService(userRepo)
	return NewOAuthHandler(svc, p, "http://localhost:3000", false, authTestLogger())
}

func TestOAuthRedirect_SetsStateAndRedirects(t *testing.T) {
	h := oauthTestHandler(new(mockUserRepo), &fakeProvider{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/google", nil)
	rec := httptest.NewRecorder()
	h.Redirect(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)

	// The state in the cookie must match the state sent to the provider.
	res := rec.Result()
	defer res.Body.Close()
	var stateCookie *http.Cookie
	for _, c := range res.Cookies() {
		if c.Name == stateCookieName {
			stateCookie = c
		}
	}
	require.NotNil(t, stateCookie)
	assert.NotEmpty(t, stateCookie.Value)
	assert.True(t, stateCookie.HttpOnly)

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, stateCookie.Value, location.Query().Get("state"))
}

func TestOAuthCallback_Success_RedirectsWithTokens(t *testing.T) {
	userRepo := new(mockUserRepo)
	p := &fakeProvider{identity: &provider.Identity{
		Provider:       "google",
		ProviderUserID: "google-sub-1",
		Email:          "test@example.com",
		EmailVerified:  true,
	}}
	h := oauthTestHandler(userRepo, p)

	existing := sampleUser()
	existing.GoogleID = strPtr("google-sub-1")
	userRepo.On("GetByGoogleID", mock.Anything, "google-sub-1").Return(existing, nil)
	userRepo.On("UpdateRefreshHash", mock.Anything, existing.ID, mock.AnythingOfType("*string")).Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?state=abc&code=xyz", nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "abc"})
	rec := httptest.NewRecorder()
	h.Callback(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/login", location.Path)
	assert.NotEmpty(t, location.Query().Get("access_token"))
	assert.NotEmpty(t, location.Query().Get("refresh_token"))

	userRepo.AssertExpectations(t)
}

func TestOAuthCallback_StateMismatch(t *testing.T) {
	h := oauthTestHandler(new(mockUserRepo), &fakeProvider{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?state=evil&code=xyz", nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "good"})
	rec := httptest.NewRecorder()
	h.Callback(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOAuthCallback_MissingStateCookie(t *testing.T) {
	h := oauthTestHandler(new(mockUserRepo), &fakeProvider{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?state=abc&code=xyz", nil)
	rec := httptest.NewRecorder()
	h.Callback(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOAuthCallback_ExchangeFails(t *testing.T) {
	h := oauthTestHandler(new(mockUserRepo), &fakeProvider{err: errors.New("code already used")})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?state=abc&code=xyz", nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "abc"})
	rec := httptest.NewRecorder()
	h.Callback(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)

	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)
}

func TestOAuthCallback_CreatesFederatedAccount(t *testing.T) {
	userRepo := new(mockUserRepo)
	p := &fakeProvider{identity: &provider.Identity{
		Provider:       "google",
		ProviderUserID: "google-sub-2",
		Email:          "fresh@example.com",
		EmailVerified:  true,
	}}
	h := oauthTestHandler(userRepo, p)

	userRepo.On("GetByGoogleID", mock.Anything, "google-sub-2").Return(nil, apperrors.ErrNotFound)
	userRepo.On("GetByEmail", mock.Anything, "fresh@example.com").Return(nil, apperrors.ErrNotFound)
	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "fresh@example.com" && u.GoogleID != nil && u.PasswordHash == nil
	})).Return(nil)
	userRepo.On("UpdateRefreshHash", mock.Anything, mock.AnythingOfType("string"), mock.AnythingOfType("*string")).Return(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?state=abc&code=xyz", nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "abc"})
	rec := httptest.NewRecorder()
	h.Callback(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)

	userRepo.AssertExpectations(t)
}
