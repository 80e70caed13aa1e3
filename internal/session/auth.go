package session

import (
	"sync"
	"sync/atomic"
)

// State is the auth lifecycle phase.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Auth is the session state machine. All redirect-to-login behavior is
// funneled through a single expiry handler so that a 401 anywhere in
// the client produces exactly one cleared session and one redirect,
// never one per call site.
type Auth struct {
	store    *Store
	onExpire func()

	mu      sync.Mutex
	state   atomic.Int32
	expired sync.Once
}

// NewAuth builds the state machine around a store. onExpire runs at most
// once per authenticated period, after the store is cleared; nil is
// allowed for callers that only need the state transitions.
func NewAuth(store *Store, onExpire func()) *Auth {
	a := &Auth{store: store, onExpire: onExpire}
	if store.Token() != "" {
		a.state.Store(int32(StateAuthenticated))
	}
	return a
}

// State reports the current lifecycle phase.
func (a *Auth) State() State {
	return State(a.state.Load())
}

// Begin marks a login or registration request as in flight. Callers
// disable their submit control for the duration.
func (a *Auth) Begin() {
	a.state.Store(int32(StateAuthenticating))
}

// Complete stores the credentials and moves to Authenticated. The
// expiry guard is re-armed so a later 401 fires the handler again.
func (a *Auth) Complete(token, username string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.store.Save(token, username); err != nil {
		return err
	}
	a.expired = sync.Once{}
	a.state.Store(int32(StateAuthenticated))
	return nil
}

// Fail returns to Anonymous after a failed login or registration.
func (a *Auth) Fail() {
	a.state.Store(int32(StateAnonymous))
}

// Expire handles a 401 from any authenticated call: clear the stored
// credentials, drop to Anonymous, and fire the redirect handler. Safe
// to call from overlapping requests; only the first call acts.
func (a *Auth) Expire() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.expired.Do(func() {
		a.store.Clear()
		a.state.Store(int32(StateAnonymous))
		if a.onExpire != nil {
			a.onExpire()
		}
	})
}

// Logout is the user-initiated synchronous transition: clear stored
// credentials and return to Anonymous. No server round-trip.
func (a *Auth) Logout() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.store.Clear(); err != nil {
		return err
	}
	a.expired = sync.Once{}
	a.state.Store(int32(StateAnonymous))
	return nil
}
