package apiclient

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultRefreshThreshold is how much remaining lifetime a credential may
// have before a call proactively refreshes it.
const DefaultRefreshThreshold = 5 * time.Minute

type credentialState int

const (
	credentialAbsent credentialState = iota
	credentialMalformed
	credentialValid
)

// inspectCredential decodes the bearer token's embedded expiry without
// verifying the signature; the client only needs the claims, the backend
// does the verification. Undecodable tokens report malformed, and the
// caller fails open (sends the token as-is) rather than blocking the call.
func inspectCredential(token string, now time.Time) (credentialState, time.Duration) {
	if token == "" {
		return credentialAbsent, 0
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return credentialMalformed, 0
	}

	// Only access tokens carry a refresh-relevant expiry; anything else is
	// sent as-is.
	if kind, ok := claims["type"].(string); ok && kind != "access" {
		return credentialMalformed, 0
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return credentialMalformed, 0
	}
	return credentialValid, exp.Time.Sub(now)
}

type refreshOutcome struct {
	token string
	err   error
}

// RefreshFunc issues the actual refresh call and returns the new credential.
type RefreshFunc func(ctx context.Context) (string, error)

// TokenManager owns the session credential: it decides when a call needs a
// proactive refresh, serializes concurrent refresh attempts, and clears the
// session when a refresh fails terminally.
//
// At most one refresh is ever in flight. Callers that arrive while one is
// running join a FIFO waiter list and are settled together with the flight.
type TokenManager struct {
	store     SessionStore
	threshold time.Duration
	refresh   RefreshFunc

	// onSessionExpired fires at most once per expired session, debounced
	// until the next successful login or refresh.
	onSessionExpired func()

	now func() time.Time

	mu           sync.Mutex
	inflight     bool
	waiters      []chan refreshOutcome
	expiredFired bool
}

// NewTokenManager wires a manager around the given session store. refresh
// performs the network call; onSessionExpired may be nil.
func NewTokenManager(store SessionStore, threshold time.Duration, refresh RefreshFunc, onSessionExpired func()) *TokenManager {
	if threshold <= 0 {
		threshold = DefaultRefreshThreshold
	}
	return &TokenManager{
		store:            store,
		threshold:        threshold,
		refresh:          refresh,
		onSessionExpired: onSessionExpired,
		now:              time.Now,
	}
}

// Credential returns the currently stored bearer token, if any.
func (m *TokenManager) Credential() (string, bool) {
	return m.store.Get(KeyAuthToken)
}

// SetCredential stores a fresh credential (login or bootstrap) and re-arms
// the session-expired hook.
func (m *TokenManager) SetCredential(token string) error {
	m.mu.Lock()
	m.expiredFired = false
	m.mu.Unlock()
	return m.store.Set(KeyAuthToken, token)
}

// ClearSession drops the credential and the cached user profile (logout).
func (m *TokenManager) ClearSession() {
	_ = m.store.Delete(KeyAuthToken)
	_ = m.store.Delete(KeyUserData)
}

// EnsureFresh returns the credential to attach to an outbound call,
// refreshing it first when its remaining lifetime is below the threshold.
// An absent credential yields ("", nil): the call goes out unauthenticated.
func (m *TokenManager) EnsureFresh(ctx context.Context) (string, error) {
	token, ok := m.store.Get(KeyAuthToken)
	if !ok || token == "" {
		return "", nil
	}

	state, remaining := inspectCredential(token, m.now())
	if state == credentialValid && remaining < m.threshold {
		return m.Refresh(ctx)
	}
	// Malformed tokens fail open: the backend is the authority on validity.
	return token, nil
}

// expireSession marks the session terminally expired: the stored credential
// and profile are dropped and the redirect hook fires, debounced until the
// next successful login or refresh. Called by the facade when a call still
// gets 401 after its refresh-and-retry.
func (m *TokenManager) expireSession() {
	m.mu.Lock()
	fire := !m.expiredFired
	m.expiredFired = true
	m.mu.Unlock()

	m.ClearSession()
	if fire && m.onSessionExpired != nil {
		m.onSessionExpired()
	}
}

// Refresh obtains a new credential, serializing concurrent attempts. If a
// refresh is already in flight the caller is queued and resolved with that
// flight's outcome, in arrival order.
func (m *TokenManager) Refresh(ctx context.Context) (string, error) {
	m.mu.Lock()
	if m.inflight {
		ch := make(chan refreshOutcome, 1)
		m.waiters = append(m.waiters, ch)
		m.mu.Unlock()

		select {
		case out := <-ch:
			return out.token, out.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	m.inflight = true
	m.mu.Unlock()

	token, err := m.refresh(ctx)

	m.mu.Lock()
	waiters := m.waiters
	m.waiters = nil
	m.inflight = false

	var fireExpired bool
	if err != nil {
		err = &APIError{Kind: KindSessionExpired, Message: "credential refresh failed", Err: err}
		if !m.expiredFired {
			m.expiredFired = true
			fireExpired = true
		}
	} else {
		m.expiredFired = false
	}
	m.mu.Unlock()

	if err != nil {
		m.ClearSession()
	} else if storeErr := m.store.Set(KeyAuthToken, token); storeErr != nil {
		// The credential is valid even if persisting it failed; keep going.
		_ = storeErr
	}

	out := refreshOutcome{token: token, err: err}
	for _, ch := range waiters {
		ch <- out
	}

	if fireExpired && m.onSessionExpired != nil {
		m.onSessionExpired()
	}
	return token, err
}
