package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"greenthumb/internal/localstore"
)

const (
	tokensKey = "provider_tokens"
	// expirySlack keeps us from handing out a token about to expire
	// mid-request.
	expirySlack = 30 * time.Second
)

// Auth0Client implements Provider against an Auth0-compatible tenant.
type Auth0Client struct {
	domain      string
	clientID    string
	audience    string
	redirectURI string
	returnTo    string
	store       *localstore.Store
	http        *http.Client
}

// Auth0Config holds the tenant settings for NewAuth0Client.
type Auth0Config struct {
	Domain      string
	ClientID    string
	Audience    string
	RedirectURI string
	ReturnTo    string
}

// NewAuth0Client creates a provider client persisting its token set in store.
func NewAuth0Client(cfg Auth0Config, store *localstore.Store) *Auth0Client {
	return &Auth0Client{
		domain:      strings.TrimSuffix(cfg.Domain, "/"),
		clientID:    cfg.ClientID,
		audience:    cfg.Audience,
		redirectURI: cfg.RedirectURI,
		returnTo:    cfg.ReturnTo,
		store:       store,
		http:        &http.Client{Timeout: 15 * time.Second},
	}
}

type tokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`
	ExpiresAt    int64  `json:"expires_at"`
}

// HasSession reports whether a token set is stored.
func (c *Auth0Client) HasSession() bool {
	return c.loadTokens() != nil
}

// LoginURL builds the authorize-redirect URL. offline_access is requested so
// silent refresh works without re-prompting the user.
func (c *Auth0Client) LoginURL(state string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.clientID)
	q.Set("redirect_uri", c.redirectURI)
	q.Set("scope", "openid profile email offline_access")
	if c.audience != "" {
		q.Set("audience", c.audience)
	}
	if state != "" {
		q.Set("state", state)
	}
	return c.domain + "/authorize?" + q.Encode()
}

// Exchange trades an authorization code for a token set.
func (c *Auth0Client) Exchange(ctx context.Context, code string) error {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", c.clientID)
	form.Set("code", code)
	form.Set("redirect_uri", c.redirectURI)
	return c.requestTokens(ctx, form)
}

// GetTokenSilently returns the cached access token while it is still valid,
// otherwise attempts a refresh-token grant. ErrNoSession is returned when
// neither path yields a token.
func (c *Auth0Client) GetTokenSilently(ctx context.Context) (string, error) {
	tokens := c.loadTokens()
	if tokens == nil {
		return "", ErrNoSession
	}

	if tokens.AccessToken != "" && time.Now().Add(expirySlack).Unix() < tokens.ExpiresAt {
		return tokens.AccessToken, nil
	}

	if tokens.RefreshToken == "" {
		return "", ErrNoSession
	}
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", c.clientID)
	form.Set("refresh_token", tokens.RefreshToken)
	if err := c.requestTokens(ctx, form); err != nil {
		return "", ErrNoSession
	}

	refreshed := c.loadTokens()
	if refreshed == nil || refreshed.AccessToken == "" {
		return "", ErrNoSession
	}
	return refreshed.AccessToken, nil
}

// Profile reads the ID-token claims. The parse is unverified: the backend
// validates the token signature on every authenticated call.
func (c *Auth0Client) Profile() (*Profile, error) {
	tokens := c.loadTokens()
	if tokens == nil || tokens.IDToken == "" {
		return nil, ErrNoSession
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokens.IDToken, claims); err != nil {
		return nil, fmt.Errorf("parse id token: %w", err)
	}

	return &Profile{
		Subject:    stringClaim(claims, "sub"),
		Email:      stringClaim(claims, "email"),
		Name:       stringClaim(claims, "name"),
		GivenName:  stringClaim(claims, "given_name"),
		FamilyName: stringClaim(claims, "family_name"),
	}, nil
}

// LogoutURL returns the provider's session-termination URL.
func (c *Auth0Client) LogoutURL() string {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	if c.returnTo != "" {
		q.Set("returnTo", c.returnTo)
	}
	return c.domain + "/v2/logout?" + q.Encode()
}

// ClearSession drops the stored token set.
func (c *Auth0Client) ClearSession() error {
	return c.store.Delete(tokensKey)
}

func (c *Auth0Client) requestTokens(ctx context.Context, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.domain+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("token request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read token response: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("token request failed: %s: %s", res.Status, strings.TrimSpace(string(body)))
	}

	var grant struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		IDToken      string `json:"id_token"`
		ExpiresIn    int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &grant); err != nil {
		return fmt.Errorf("decode token response: %w", err)
	}

	tokens := tokenSet{
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		IDToken:      grant.IDToken,
		ExpiresAt:    tokenExpiry(grant.AccessToken, grant.ExpiresIn),
	}
	// A refresh-token grant may omit a new refresh token; keep the old one.
	if tokens.RefreshToken == "" {
		if prev := c.loadTokens(); prev != nil {
			tokens.RefreshToken = prev.RefreshToken
		}
	}

	payload, err := json.Marshal(tokens)
	if err != nil {
		return err
	}
	return c.store.Set(tokensKey, string(payload))
}

// tokenExpiry prefers the grant's expires_in and falls back to the access
// token's exp claim.
func tokenExpiry(accessToken string, expiresIn int64) int64 {
	if expiresIn > 0 {
		return time.Now().Unix() + expiresIn
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err == nil {
		if exp, ok := claims["exp"].(float64); ok {
			return int64(exp)
		}
	}
	return 0
}

func (c *Auth0Client) loadTokens() *tokenSet {
	raw := c.store.Get(tokensKey)
	if raw == "" {
		return nil
	}
	var tokens tokenSet
	if err := json.Unmarshal([]byte(raw), &tokens); err != nil {
		return nil
	}
	return &tokens
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}
