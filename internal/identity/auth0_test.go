package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenthumb/internal/localstore"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

// tokenEndpoint fakes the provider's /oauth/token, recording received grants.
type tokenEndpoint struct {
	grants []url.Values
	status int
	body   map[string]any
}

func (e *tokenEndpoint) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/token" {
			http.NotFound(w, r)
			return
		}
		_ = r.ParseForm()
		e.grants = append(e.grants, r.PostForm)
		w.Header().Set("Content-Type", "application/json")
		if e.status != 0 {
			w.WriteHeader(e.status)
		}
		_ = json.NewEncoder(w).Encode(e.body)
	}
}

func newTestClient(t *testing.T, domain string) (*Auth0Client, *localstore.Store) {
	t.Helper()
	store := localstore.Open(filepath.Join(t.TempDir(), "state.json"))
	c := NewAuth0Client(Auth0Config{
		Domain:      domain,
		ClientID:    "client-1",
		Audience:    "https://api.greenthumb.test",
		RedirectURI: "http://localhost:3000/callback",
		ReturnTo:    "http://localhost:3000",
	}, store)
	return c, store
}

func TestGetTokenSilently_NoSession(t *testing.T) {
	c, _ := newTestClient(t, "https://example.invalid")

	_, err := c.GetTokenSilently(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
	assert.False(t, c.HasSession())
}

func TestExchange_StoresTokensAndProfile(t *testing.T) {
	idToken := signedToken(t, jwt.MapClaims{
		"sub":   "auth0|abc",
		"email": "ana@example.com",
		"name":  "Ana Gómez",
	})
	endpoint := &tokenEndpoint{body: map[string]any{
		"access_token":  "access-1",
		"refresh_token": "refresh-1",
		"id_token":      idToken,
		"expires_in":    3600,
	}}
	srv := httptest.NewServer(endpoint.handler())
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	require.NoError(t, c.Exchange(context.Background(), "code-1"))
	require.True(t, c.HasSession())

	require.Len(t, endpoint.grants, 1)
	assert.Equal(t, "authorization_code", endpoint.grants[0].Get("grant_type"))
	assert.Equal(t, "code-1", endpoint.grants[0].Get("code"))

	token, err := c.GetTokenSilently(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-1", token)
	// Token is fresh; no refresh grant should have gone out.
	assert.Len(t, endpoint.grants, 1)

	profile, err := c.Profile()
	require.NoError(t, err)
	assert.Equal(t, "auth0|abc", profile.Subject)
	assert.Equal(t, "ana@example.com", profile.Email)
	assert.Equal(t, "Ana Gómez", profile.Name)
}

func TestExchange_ExpiryFromTokenClaim(t *testing.T) {
	accessToken := signedToken(t, jwt.MapClaims{
		"sub": "auth0|abc",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	// No expires_in: the expiry must come from the access token's exp claim.
	endpoint := &tokenEndpoint{body: map[string]any{
		"access_token": accessToken,
	}}
	srv := httptest.NewServer(endpoint.handler())
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)
	require.NoError(t, c.Exchange(context.Background(), "code-1"))

	token, err := c.GetTokenSilently(context.Background())
	require.NoError(t, err)
	assert.Equal(t, accessToken, token)
	// The token is still fresh, so no refresh grant went out.
	assert.Len(t, endpoint.grants, 1)
}

func TestGetTokenSilently_RefreshesExpiredToken(t *testing.T) {
	endpoint := &tokenEndpoint{body: map[string]any{
		"access_token": "access-2",
		"expires_in":   3600,
	}}
	srv := httptest.NewServer(endpoint.handler())
	defer srv.Close()

	c, store := newTestClient(t, srv.URL)
	seed, err := json.Marshal(tokenSet{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(-time.Minute).Unix(),
	})
	require.NoError(t, err)
	require.NoError(t, store.Set(tokensKey, string(seed)))

	token, err := c.GetTokenSilently(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-2", token)

	require.Len(t, endpoint.grants, 1)
	assert.Equal(t, "refresh_token", endpoint.grants[0].Get("grant_type"))
	assert.Equal(t, "refresh-1", endpoint.grants[0].Get("refresh_token"))

	// The grant omitted a new refresh token; the old one must survive.
	refreshed := c.loadTokens()
	require.NotNil(t, refreshed)
	assert.Equal(t, "refresh-1", refreshed.RefreshToken)
}

func TestGetTokenSilently_RefreshFailure(t *testing.T) {
	endpoint := &tokenEndpoint{status: http.StatusForbidden, body: map[string]any{
		"error": "invalid_grant",
	}}
	srv := httptest.NewServer(endpoint.handler())
	defer srv.Close()

	c, store := newTestClient(t, srv.URL)
	seed, err := json.Marshal(tokenSet{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(-time.Minute).Unix(),
	})
	require.NoError(t, err)
	require.NoError(t, store.Set(tokensKey, string(seed)))

	_, err = c.GetTokenSilently(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestClearSession(t *testing.T) {
	c, store := newTestClient(t, "https://example.invalid")
	seed, err := json.Marshal(tokenSet{AccessToken: "access-1"})
	require.NoError(t, err)
	require.NoError(t, store.Set(tokensKey, string(seed)))
	require.True(t, c.HasSession())

	require.NoError(t, c.ClearSession())
	assert.False(t, c.HasSession())
}

func TestURLs(t *testing.T) {
	c, _ := newTestClient(t, "https://tenant.auth0.test")

	login, err := url.Parse(c.LoginURL("state-1"))
	require.NoError(t, err)
	assert.Equal(t, "/authorize", login.Path)
	q := login.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "client-1", q.Get("client_id"))
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Contains(t, q.Get("scope"), "offline_access")

	logout, err := url.Parse(c.LogoutURL())
	require.NoError(t, err)
	assert.Equal(t, "/v2/logout", logout.Path)
	assert.Equal(t, "http://localhost:3000", logout.Query().Get("returnTo"))
}
