// Package flights mirrors one flight search's parameters and results plus a
// short history of past searches.
package flights

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/DevLuiggi/travelsia-go/pkg/gateway"
)

// ErrOfferNotInResult is returned by SelectOffer when the offer does not
// belong to the current result set.
var ErrOfferNotInResult = errors.New("offer is not part of the current search result")

// State is the flight-search snapshot handed to readers.
type State struct {
	Params         *gateway.SearchParams
	Result         *gateway.SearchResponse
	History        []gateway.SearchHistory
	Selected       *gateway.FlightOffer
	Searching      bool
	LoadingHistory bool
	Err            string
}

// Store is the flight-search state container. A generation counter tags each
// search at issue time; a resolution belonging to a superseded search is
// discarded, so the latest-issued search always wins regardless of network
// ordering.
type Store struct {
	api gateway.API
	log *zap.Logger

	mu        sync.Mutex
	state     State
	subs      map[int]func(State)
	nextSub   int
	searchGen uint64
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New creates a flight-search store over the given gateway.
func New(api gateway.API, opts ...Option) *Store {
	s := &Store{
		api:  api,
		log:  zap.NewNop(),
		subs: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a snapshot of the current flight-search state.
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

func (s *Store) notify(snapshot State, subs []func(State)) {
	for _, fn := range subs {
		fn(snapshot)
	}
}

func (s *Store) subscribers() []func(State) {
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

// setState applies mutate under the lock, then notifies subscribers outside it.
func (s *Store) setState(mutate func(*State)) {
	s.mu.Lock()
	mutate(&s.state)
	snapshot := s.state
	subs := s.subscribers()
	s.mu.Unlock()

	s.notify(snapshot, subs)
}

// SearchFlights runs one search. The submitted params are visible in the
// state before the call resolves. A successful result replaces the result
// set wholesale and clears any previous selection; a result arriving for a
// search that has since been superseded is discarded.
func (s *Store) SearchFlights(ctx context.Context, params gateway.SearchParams) (*gateway.SearchResponse, error) {
	params.Normalize()

	s.mu.Lock()
	s.searchGen++
	gen := s.searchGen
	s.state.Params = &params
	s.state.Searching = true
	s.state.Err = ""
	snapshot := s.state
	subs := s.subscribers()
	s.mu.Unlock()
	s.notify(snapshot, subs)

	result, err := s.api.SearchFlights(ctx, params)

	s.mu.Lock()
	if gen != s.searchGen {
		// A newer search owns the state now; this resolution is stale.
		s.mu.Unlock()
		s.log.Debug("discarding stale search result",
			zap.Uint64("generation", gen),
			zap.String("origin", params.Origin),
			zap.String("destination", params.Destination))
		return result, err
	}
	if err != nil {
		s.state.Err = gateway.UserMessage(err)
		s.state.Searching = false
	} else {
		s.state.Result = result
		s.state.Selected = nil
		s.state.Searching = false
	}
	snapshot = s.state
	subs = s.subscribers()
	s.mu.Unlock()
	s.notify(snapshot, subs)

	if err != nil {
		return nil, err
	}
	return result, nil
}

// FetchSearchHistory fetches the most recent past searches, at most limit
// (default 10). Failures surface an error but leave the rest of the state
// untouched.
func (s *Store) FetchSearchHistory(ctx context.Context, limit int) error {
	if limit <= 0 {
		limit = 10
	}

	s.setState(func(st *State) {
		st.LoadingHistory = true
	})

	history, err := s.api.SearchHistory(ctx, limit)
	if err != nil {
		s.setState(func(st *State) {
			st.Err = gateway.UserMessage(err)
			st.LoadingHistory = false
		})
		return err
	}

	if len(history) > limit {
		history = history[:limit]
	}
	s.setState(func(st *State) {
		st.History = history
		st.LoadingHistory = false
	})
	return nil
}

// FetchSearchDetail fetches one past search with its offer snapshots. The
// detail is returned to the caller, not cached in the store.
func (s *Store) FetchSearchDetail(ctx context.Context, searchID string) (*gateway.SearchDetail, error) {
	detail, err := s.api.SearchDetail(ctx, searchID)
	if err != nil {
		s.setState(func(st *State) {
			st.Err = gateway.UserMessage(err)
		})
		return nil, err
	}
	return detail, nil
}

// SelectOffer sets the chosen offer, or clears it when offer is nil. The
// selection must reference an offer of the current result set.
func (s *Store) SelectOffer(offer *gateway.FlightOffer) error {
	if offer == nil {
		s.setState(func(st *State) {
			st.Selected = nil
		})
		return nil
	}

	s.mu.Lock()
	if !s.offerInResult(offer.ID) {
		s.mu.Unlock()
		return ErrOfferNotInResult
	}
	s.state.Selected = offer
	snapshot := s.state
	subs := s.subscribers()
	s.mu.Unlock()
	s.notify(snapshot, subs)
	return nil
}

// offerInResult reports whether the current result set contains the offer.
// Caller holds the lock.
func (s *Store) offerInResult(offerID string) bool {
	if s.state.Result == nil {
		return false
	}
	for _, o := range s.state.Result.Offers {
		if o.ID == offerID {
			return true
		}
	}
	return false
}

// ClearSearch resets params, result, and selection together, used when the
// user abandons the search context.
func (s *Store) ClearSearch() {
	s.setState(func(st *State) {
		st.Params = nil
		st.Result = nil
		st.Selected = nil
		st.Err = ""
	})
}

// ClearError clears the surfaced error message. Idempotent.
func (s *Store) ClearError() {
	s.setState(func(st *State) {
		st.Err = ""
	})
}
