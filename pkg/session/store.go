// Package session mirrors the authenticated user's identity and travel
// preferences. The store owns its state exclusively; consumers read
// snapshots and subscribe to changes.
package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/DevLuiggi/travelsia-go/pkg/gateway"
)

// State is the session snapshot handed to readers. Pointers reference
// server-mirrored records; consumers must not mutate them.
type State struct {
	User          *gateway.AuthProfile
	Preferences   *gateway.UserPreferences
	Authenticated bool
	Loading       bool
	Err           string
}

// Store is the session state container.
// Anonymous -> (login success) -> Authenticated -> (logout | profile-fetch
// failure | 401 on any call) -> Anonymous.
type Store struct {
	api gateway.API
	log *zap.Logger

	mu      sync.Mutex
	state   State
	subs    map[int]func(State)
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New creates a session store over the given gateway. The initial
// authentication flag reflects whether a persisted token was loaded.
func New(api gateway.API, opts ...Option) *Store {
	s := &Store{
		api:  api,
		log:  zap.NewNop(),
		subs: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state.Authenticated = api.IsAuthenticated()
	return s
}

// State returns a snapshot of the current session state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to run after every state change with the new
// snapshot. The returned cancel func removes the subscription.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// setState applies mutate under the lock, then notifies subscribers outside it.
func (s *Store) setState(mutate func(*State)) {
	s.mu.Lock()
	mutate(&s.state)
	snapshot := s.state
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

// Login authenticates and mirrors the resulting profile. On success a
// preferences prefetch is fired in the background; its failure is logged,
// never surfaced. On failure the store error is set and the error returned so
// the caller can abort its own flow.
func (s *Store) Login(ctx context.Context, email, password string) error {
	s.setState(func(st *State) {
		st.Loading = true
		st.Err = ""
	})

	if _, err := s.api.Login(ctx, gateway.LoginRequest{Email: email, Password: password}); err != nil {
		s.fail(err)
		return err
	}

	profile, err := s.api.Profile(ctx)
	if err != nil {
		s.fail(err)
		return err
	}

	s.setState(func(st *State) {
		st.User = profile
		st.Authenticated = true
		st.Loading = false
	})

	go s.prefetchPreferences()
	return nil
}

// Register creates an account. It does not authenticate; registration alone
// does not issue a session.
func (s *Store) Register(ctx context.Context, req gateway.RegisterRequest) error {
	s.setState(func(st *State) {
		st.Loading = true
		st.Err = ""
	})

	if _, err := s.api.Register(ctx, req); err != nil {
		s.fail(err)
		return err
	}

	s.setState(func(st *State) {
		st.Loading = false
	})
	return nil
}

// Logout clears the token and resets to anonymous. It never needs the
// network and cannot fail.
func (s *Store) Logout() {
	s.api.ClearToken()
	s.setState(func(st *State) {
		*st = State{}
	})
}

// ForceAnonymous resets identity state without touching the token. Wired by
// the composition root to the gateway's session-invalidation signal, which
// has already cleared the token when this runs.
func (s *Store) ForceAnonymous() {
	s.setState(func(st *State) {
		*st = State{Err: st.Err}
	})
}

// FetchProfile refreshes the mirrored profile. A failure demotes the session
// to anonymous: an unreadable profile is evidence of an invalid session.
func (s *Store) FetchProfile(ctx context.Context) error {
	if !s.api.IsAuthenticated() {
		return nil
	}

	s.setState(func(st *State) {
		st.Loading = true
	})

	profile, err := s.api.Profile(ctx)
	if err != nil {
		s.setState(func(st *State) {
			st.Err = gateway.UserMessage(err)
			st.Loading = false
			st.Authenticated = false
		})
		return err
	}

	s.setState(func(st *State) {
		st.User = profile
		st.Authenticated = true
		st.Loading = false
	})
	return nil
}

// UpdateProfile applies a partial profile mutation and mirrors the result.
func (s *Store) UpdateProfile(ctx context.Context, req gateway.UpdateProfileRequest) error {
	if !s.api.IsAuthenticated() {
		return nil
	}

	s.setState(func(st *State) {
		st.Loading = true
		st.Err = ""
	})

	profile, err := s.api.UpdateProfile(ctx, req)
	if err != nil {
		s.fail(err)
		return err
	}

	s.setState(func(st *State) {
		st.User = profile
		st.Loading = false
	})
	return nil
}

// FetchPreferences mirrors the preferences record. Failures are logged, not
// surfaced: preferences are a non-critical enrichment of the session.
func (s *Store) FetchPreferences(ctx context.Context) error {
	if !s.api.IsAuthenticated() {
		return nil
	}

	prefs, err := s.api.Preferences(ctx)
	if err != nil {
		s.log.Warn("fetch preferences failed", zap.Error(err))
		return err
	}

	s.setState(func(st *State) {
		st.Preferences = prefs
	})
	return nil
}

// UpdatePreferences replaces the preferences record, mirroring the backend's
// echo. Unlike a fetch, an update failure is surfaced and returned.
func (s *Store) UpdatePreferences(ctx context.Context, prefs gateway.UserPreferences) error {
	s.setState(func(st *State) {
		st.Loading = true
		st.Err = ""
	})

	updated, err := s.api.UpdatePreferences(ctx, prefs)
	if err != nil {
		s.fail(err)
		return err
	}

	s.setState(func(st *State) {
		st.Preferences = updated
		st.Loading = false
	})
	return nil
}

// CheckAuth re-validates the session opportunistically. Without a token it
// forces anonymous state; with one it treats a profile fetch as the litmus
// test, clearing the token on failure. It never reports an error: it is not
// a user action, just housekeeping on route entry.
func (s *Store) CheckAuth(ctx context.Context) {
	if !s.api.IsAuthenticated() {
		s.setState(func(st *State) {
			st.Authenticated = false
			st.User = nil
		})
		return
	}

	profile, err := s.api.Profile(ctx)
	if err != nil {
		s.api.ClearToken()
		s.setState(func(st *State) {
			st.Authenticated = false
			st.User = nil
		})
		return
	}

	s.setState(func(st *State) {
		st.User = profile
		st.Authenticated = true
	})

	go s.prefetchPreferences()
}

// ClearError clears the surfaced error message. Idempotent.
func (s *Store) ClearError() {
	s.setState(func(st *State) {
		st.Err = ""
	})
}

func (s *Store) fail(err error) {
	s.setState(func(st *State) {
		st.Err = gateway.UserMessage(err)
		st.Loading = false
	})
}

// prefetchPreferences is the fire-and-forget refresh after login/CheckAuth.
// FetchPreferences already logs its own failure.
func (s *Store) prefetchPreferences() {
	ctx, cancel := context.WithTimeout(context.Background(), gateway.DefaultTimeout)
	defer cancel()
	_ = s.FetchPreferences(ctx)
}
