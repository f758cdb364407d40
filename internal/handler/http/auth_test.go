package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/ponto-escolar/ponto-backend-go/internal/domain/auth"
	"github.com/ponto-escolar/ponto-backend-go/internal/domain/user"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/jwt"
	"github.com/ponto-escolar/ponto-backend-go/internal/pkg/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	auth.AuthService
	loggedOut string
	refreshed string
}

func (f *fakeAuth) Login(_ context.Context, req auth.LoginRequest, _ auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if req.Password != "segredo123" {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	return auth.TokenResponse{
		AccessToken:           "access",
		AccessTokenExpiresIn:  900,
		RefreshToken:          "refresh-abc",
		RefreshTokenExpiresIn: 4102444800,
		User:                  user.ToResponse(ana),
	}, nil
}

func (f *fakeAuth) Logout(_ context.Context, refreshToken string) error {
	f.loggedOut = refreshToken
	return nil
}

func (f *fakeAuth) RefreshToken(_ context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	f.refreshed = req.RefreshToken
	return auth.AccessTokenResponse{AccessToken: "new-access", AccessTokenExpiresIn: 900}, nil
}

func newAuthHandlerForTest(svc auth.AuthService) (AuthHandler, jwt.Service) {
	jwtService := jwt.NewJWTService("auth-handler-secret", "15m", "24h", false)
	google := oauth.NewGoogleService("client", "secret", "http://localhost:8080/api/v1/auth/oauth/callback/google", nil, false)
	return NewAuthHandler(jwtService, svc, nil, google, "http://localhost:3000"), jwtService
}

func TestAuthHandler_LoginSetsRefreshCookie(t *testing.T) {
	h, _ := newAuthHandlerForTest(&fakeAuth{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":" Ana@Escola.edu.br ","password":"segredo123"}`))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "refresh_token" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, "refresh-abc", cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestAuthHandler_LoginErrors(t *testing.T) {
	h, _ := newAuthHandlerForTest(&fakeAuth{})

	rec := httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"ana@escola.edu.br","password":"errada"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"not-an-email"}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_RefreshPrefersCookie(t *testing.T) {
	svc := &fakeAuth{}
	h, _ := newAuthHandlerForTest(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"from-body"}`))
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "from-cookie"})
	rec := httptest.NewRecorder()
	h.RefreshToken(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "from-cookie", svc.refreshed)

	rec = httptest.NewRecorder()
	h.RefreshToken(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"from-body"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "from-body", svc.refreshed)
}

func TestAuthHandler_LogoutRevokesBothTokens(t *testing.T) {
	svc := &fakeAuth{}
	h, jwtService := newAuthHandlerForTest(svc)
	access, _, err := jwtService.GenerateAccessToken(anaID, ana.Email, ana.ActiveRole)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "refresh-abc"})
	req.Header.Set("Authorization", "Bearer "+access)
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "refresh-abc", svc.loggedOut)
	assert.True(t, jwtService.IsTokenRevoked(access))

	rec = httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_GoogleLoginRedirectsWithState(t *testing.T) {
	h, _ := newAuthHandlerForTest(&fakeAuth{})

	rec := httptest.NewRecorder()
	h.LoginWithGoogle(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/login/oauth/google", nil))

	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	var state string
	for _, c := range rec.Result().Cookies() {
		if c.Name == oauth.StateCookieName {
			state = c.Value
		}
	}
	require.NotEmpty(t, state)

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, state, location.Query().Get("state"))
}

func TestAuthHandler_GoogleCallbackRejectsBadState(t *testing.T) {
	h, _ := newAuthHandlerForTest(&fakeAuth{})

	tests := []struct {
		name   string
		cookie string
		query  string
		want   string
	}{
		{"no cookie", "", "state=abc&code=x", "state_cookie_not_found"},
		{"mismatch", "abc", "state=xyz&code=x", "state_mismatch"},
		{"provider error", "abc", "error=access_denied", "access_denied"},
		{"no code", "abc", "state=abc", "code_empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/oauth/callback/google?"+tt.query, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: oauth.StateCookieName, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.OAuthCallbackGoogle(rec, req)

			require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
			location, err := url.Parse(rec.Header().Get("Location"))
			require.NoError(t, err)
			assert.Equal(t, "/auth/callback/google", location.Path)
			assert.Equal(t, tt.want, location.Query().Get("error"))
		})
	}
}
