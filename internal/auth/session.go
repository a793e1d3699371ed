// Package auth owns the single active session identity: either the anonymous
// client or a backend-synchronized user profile. All reads go through the
// exposed accessors; no other component mutates session state.
package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"greenthumb/internal/api"
	"greenthumb/internal/identity"
	"greenthumb/internal/localstore"
	"greenthumb/internal/model"
)

const loginStateKey = "login_state"

var (
	// ErrNotAuthenticated is returned for operations that need a bearer token
	// when none can be obtained.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrLoginStateMismatch is returned when the redirect callback carries an
	// unexpected state value.
	ErrLoginStateMismatch = errors.New("login state mismatch")
	// ErrNotOnboarding is returned when registration is submitted outside the
	// onboarding state.
	ErrNotOnboarding = errors.New("session is not awaiting registration")
)

// State is the session lifecycle position.
type State int

const (
	// StateAnonymous means no provider session; cart operations use the
	// anonymous client identifier.
	StateAnonymous State = iota
	// StateSyncing means the provider reported a session and the backend
	// profile sync is in flight.
	StateSyncing
	// StateOnboarding means the backend profile exists but is incomplete.
	StateOnboarding
	// StateAuthenticated means a complete backend profile is cached.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateSyncing:
		return "syncing"
	case StateOnboarding:
		return "onboarding"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// SessionManager drives the session state machine. A provider session is
// only surfaced as authenticated once the backend recognizes it; any sync
// failure forces a full logout rather than leaving a half-authenticated
// state.
type SessionManager struct {
	provider identity.Provider
	client   *api.Client
	store    *localstore.Store
	log      *zap.SugaredLogger

	state State
	user  *model.User
}

// NewSessionManager creates a session manager in the anonymous state.
func NewSessionManager(provider identity.Provider, client *api.Client, store *localstore.Store, log *zap.SugaredLogger) *SessionManager {
	return &SessionManager{
		provider: provider,
		client:   client,
		store:    store,
		log:      log,
		state:    StateAnonymous,
	}
}

// Initialize resolves the starting state: if the provider reports a session,
// the backend profile is synchronized; otherwise the session stays anonymous.
func (m *SessionManager) Initialize(ctx context.Context) error {
	if !m.provider.HasSession() {
		m.state = StateAnonymous
		m.user = nil
		return nil
	}
	return m.sync(ctx)
}

// Login begins the redirect flow and returns the provider URL the user must
// visit. The state parameter is persisted for callback validation.
func (m *SessionManager) Login() (string, error) {
	state := uuid.New().String()
	if err := m.store.Set(loginStateKey, state); err != nil {
		return "", err
	}
	return m.provider.LoginURL(state), nil
}

// CompleteLogin consumes the redirect callback: it validates the state
// value, exchanges the authorization code, and synchronizes the backend
// profile.
func (m *SessionManager) CompleteLogin(ctx context.Context, code, state string) error {
	expected := m.store.Get(loginStateKey)
	_ = m.store.Delete(loginStateKey)
	if expected == "" || state != expected {
		return ErrLoginStateMismatch
	}
	if err := m.provider.Exchange(ctx, code); err != nil {
		return err
	}
	return m.sync(ctx)
}

// Logout clears the cached profile, the provider session, and the anonymous
// identity, returning the provider logout URL. It succeeds from any state.
func (m *SessionManager) Logout() string {
	m.user = nil
	m.state = StateAnonymous
	if err := m.provider.ClearSession(); err != nil {
		m.log.Warnw("clear provider session", "error", err)
	}
	if err := m.store.ClearAnonymousClientID(); err != nil {
		m.log.Warnw("clear anonymous id", "error", err)
	}
	return m.provider.LogoutURL()
}

// GetAccessToken returns a valid bearer token, or "" when none can be
// silently obtained. Callers must treat "" as not authenticated for that
// call and must not retry in a loop.
func (m *SessionManager) GetAccessToken(ctx context.Context) string {
	token, err := m.provider.GetTokenSilently(ctx)
	if err != nil {
		return ""
	}
	return token
}

// CompleteRegistration submits the onboarding profile fields and re-runs the
// profile sync; on success the session becomes fully authenticated.
func (m *SessionManager) CompleteRegistration(ctx context.Context, reg model.Registration) error {
	if m.state != StateOnboarding {
		return ErrNotOnboarding
	}
	token, err := m.provider.GetTokenSilently(ctx)
	if err != nil {
		return ErrNotAuthenticated
	}

	resp := api.Call[model.User](ctx, m.client, api.Request{
		Method: http.MethodPost,
		Path:   "/auth/registrar-cliente",
		Body:   reg,
		Token:  token,
	})
	if !resp.Ok() {
		m.log.Warnw("register client", "error", resp.Err, "status", resp.Status)
		return resp.Error()
	}
	return m.sync(ctx)
}

// State returns the current lifecycle position.
func (m *SessionManager) State() State { return m.state }

// IsAuthenticated reports whether a complete backend profile is cached.
func (m *SessionManager) IsAuthenticated() bool { return m.state == StateAuthenticated }

// IsLoading reports whether a profile sync is in flight.
func (m *SessionManager) IsLoading() bool { return m.state == StateSyncing }

// User returns the cached backend profile, or nil outside the onboarding and
// authenticated states.
func (m *SessionManager) User() *model.User { return m.user }

// AnonymousClientID returns the identifier that scopes cart operations.
func (m *SessionManager) AnonymousClientID() string {
	return m.store.AnonymousClientID()
}

// sync exchanges the provider token for a backend profile. Any failure here
// is fatal for the session: the UI must never show authenticated without a
// backend-recognized profile.
func (m *SessionManager) sync(ctx context.Context) error {
	m.state = StateSyncing
	m.user = nil

	token, err := m.provider.GetTokenSilently(ctx)
	if err != nil {
		m.log.Warnw("silent token retrieval failed, logging out", "error", err)
		m.Logout()
		return ErrNotAuthenticated
	}

	resp := api.Call[model.User](ctx, m.client, api.Request{
		Path:  "/auth/sincronizar-usuario",
		Token: token,
	})
	if !resp.Ok() {
		m.log.Warnw("profile sync failed, logging out", "error", resp.Err, "status", resp.Status)
		m.Logout()
		return resp.Error()
	}
	if resp.Data == nil {
		// A sync without a profile body is as unusable as a failed one.
		m.log.Warnw("profile sync returned no profile, logging out", "status", resp.Status)
		m.Logout()
		return ErrNotAuthenticated
	}

	m.user = resp.Data
	if !resp.Data.RegistrationComplete {
		m.log.Infow("profile incomplete, onboarding required", "email", resp.Data.Email)
		m.state = StateOnboarding
		return nil
	}

	m.log.Infow("profile synchronized", "email", resp.Data.Email, "roles", resp.Data.Roles)
	m.state = StateAuthenticated
	return nil
}
