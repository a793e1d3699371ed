package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"greenthumb/internal/api"
	"greenthumb/internal/backendtest"
	"greenthumb/internal/identity"
	"greenthumb/internal/localstore"
	"greenthumb/internal/model"
)

// stubProvider is a scripted identity.Provider.
type stubProvider struct {
	hasSession  bool
	token       string
	tokenErr    error
	exchangeErr error
	cleared     bool
}

func (p *stubProvider) HasSession() bool             { return p.hasSession }
func (p *stubProvider) LoginURL(state string) string { return "https://idp.test/authorize?state=" + state }
func (p *stubProvider) LogoutURL() string            { return "https://idp.test/v2/logout" }
func (p *stubProvider) Profile() (*identity.Profile, error) {
	return &identity.Profile{Subject: "auth0|abc"}, nil
}

func (p *stubProvider) Exchange(ctx context.Context, code string) error {
	if p.exchangeErr != nil {
		return p.exchangeErr
	}
	p.hasSession = true
	return nil
}

func (p *stubProvider) GetTokenSilently(ctx context.Context) (string, error) {
	if p.tokenErr != nil {
		return "", p.tokenErr
	}
	return p.token, nil
}

func (p *stubProvider) ClearSession() error {
	p.cleared = true
	p.hasSession = false
	return nil
}

type fixture struct {
	backend  *backendtest.Server
	provider *stubProvider
	store    *localstore.Store
	manager  *SessionManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := backendtest.New()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	provider := &stubProvider{}
	store := localstore.Open(filepath.Join(t.TempDir(), "state.json"))
	manager := NewSessionManager(provider, api.NewClient(srv.URL), store, zap.NewNop().Sugar())
	return &fixture{backend: backend, provider: provider, store: store, manager: manager}
}

func TestInitialize_NoProviderSessionStaysAnonymous(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.manager.Initialize(context.Background()))

	assert.Equal(t, StateAnonymous, f.manager.State())
	assert.False(t, f.manager.IsAuthenticated())
	assert.Nil(t, f.manager.User())
}

func TestInitialize_CompleteProfileAuthenticates(t *testing.T) {
	f := newFixture(t)
	f.provider.hasSession = true
	f.provider.token = "tok-1"
	f.backend.SeedUser("tok-1", model.User{
		ID: 7, Email: "ana@example.com", FirstName: "Ana", LastName: "Gómez",
		Roles: []string{"CLIENTE"}, RegistrationComplete: true,
	})

	require.NoError(t, f.manager.Initialize(context.Background()))

	assert.Equal(t, StateAuthenticated, f.manager.State())
	assert.True(t, f.manager.IsAuthenticated())
	require.NotNil(t, f.manager.User())
	assert.Equal(t, "ana@example.com", f.manager.User().Email)
}

func TestInitialize_IncompleteProfileGoesToOnboarding(t *testing.T) {
	f := newFixture(t)
	f.provider.hasSession = true
	f.provider.token = "tok-1"
	f.backend.SeedUser("tok-1", model.User{
		ID: 7, Email: "ana@example.com", RegistrationComplete: false,
	})

	require.NoError(t, f.manager.Initialize(context.Background()))

	assert.Equal(t, StateOnboarding, f.manager.State())
	// An incomplete profile must never surface as authenticated.
	assert.False(t, f.manager.IsAuthenticated())
	require.NotNil(t, f.manager.User())
}

func TestInitialize_BackendRejectsTokenForcesLogout(t *testing.T) {
	f := newFixture(t)
	f.provider.hasSession = true
	f.provider.token = "unknown-token"
	before := f.store.AnonymousClientID()

	err := f.manager.Initialize(context.Background())
	require.Error(t, err)

	assert.Equal(t, StateAnonymous, f.manager.State())
	assert.False(t, f.manager.IsAuthenticated())
	assert.Nil(t, f.manager.User())
	assert.True(t, f.provider.cleared)
	assert.NotEqual(t, before, f.store.AnonymousClientID())
}

func TestInitialize_EmptySyncBodyForcesLogout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	provider := &stubProvider{hasSession: true, token: "tok-1"}
	store := localstore.Open(filepath.Join(t.TempDir(), "state.json"))
	manager := NewSessionManager(provider, api.NewClient(srv.URL), store, zap.NewNop().Sugar())

	err := manager.Initialize(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, StateAnonymous, manager.State())
	assert.Nil(t, manager.User())
	assert.True(t, provider.cleared)
}

func TestInitialize_SilentTokenFailureForcesLogout(t *testing.T) {
	f := newFixture(t)
	f.provider.hasSession = true
	f.provider.tokenErr = identity.ErrNoSession

	err := f.manager.Initialize(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, StateAnonymous, f.manager.State())
	assert.True(t, f.provider.cleared)
}

func TestLogout_ClearsEverythingFromAnyState(t *testing.T) {
	f := newFixture(t)
	f.provider.hasSession = true
	f.provider.token = "tok-1"
	f.backend.SeedUser("tok-1", model.User{ID: 7, Email: "ana@example.com", RegistrationComplete: true})
	require.NoError(t, f.manager.Initialize(context.Background()))
	require.True(t, f.manager.IsAuthenticated())

	url := f.manager.Logout()

	assert.Equal(t, "https://idp.test/v2/logout", url)
	assert.Equal(t, StateAnonymous, f.manager.State())
	assert.False(t, f.manager.IsAuthenticated())
	assert.Nil(t, f.manager.User())
	assert.True(t, f.provider.cleared)
}

func TestGetAccessToken_EmptyWhenUnobtainable(t *testing.T) {
	f := newFixture(t)
	f.provider.tokenErr = errors.New("refresh failed")

	assert.Equal(t, "", f.manager.GetAccessToken(context.Background()))
}

func TestCompleteRegistration(t *testing.T) {
	f := newFixture(t)
	f.provider.hasSession = true
	f.provider.token = "tok-1"
	f.backend.SeedUser("tok-1", model.User{ID: 7, Email: "ana@example.com", RegistrationComplete: false})
	require.NoError(t, f.manager.Initialize(context.Background()))
	require.Equal(t, StateOnboarding, f.manager.State())

	reg := model.Registration{
		Phone: "2611234567", Street: "San Martín", Number: "742",
		PostalCode: "5500", City: "Mendoza", Province: "Mendoza",
	}
	require.NoError(t, f.manager.CompleteRegistration(context.Background(), reg))

	assert.Equal(t, StateAuthenticated, f.manager.State())
	assert.True(t, f.manager.IsAuthenticated())

	stored, ok := f.backend.RegistrationOf("tok-1")
	require.True(t, ok)
	assert.Equal(t, reg, stored)
}

func TestCompleteRegistration_OutsideOnboarding(t *testing.T) {
	f := newFixture(t)

	err := f.manager.CompleteRegistration(context.Background(), model.Registration{})
	assert.ErrorIs(t, err, ErrNotOnboarding)
}

func TestLoginFlow(t *testing.T) {
	f := newFixture(t)
	f.provider.token = "tok-1"
	f.backend.SeedUser("tok-1", model.User{ID: 7, Email: "ana@example.com", RegistrationComplete: true})

	url, err := f.manager.Login()
	require.NoError(t, err)
	state := f.store.Get(loginStateKey)
	require.NotEmpty(t, state)
	assert.Contains(t, url, state)

	// Wrong state is rejected and consumes the stored value.
	assert.ErrorIs(t, f.manager.CompleteLogin(context.Background(), "code-1", "wrong"), ErrLoginStateMismatch)

	url, err = f.manager.Login()
	require.NoError(t, err)
	state = f.store.Get(loginStateKey)
	require.NoError(t, f.manager.CompleteLogin(context.Background(), "code-1", state))
	assert.True(t, f.manager.IsAuthenticated())
}
