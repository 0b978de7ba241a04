// Package itinerary mirrors one AI trip-plan request/response pair.
package itinerary

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/DevLuiggi/travelsia-go/pkg/gateway"
)

// State is the itinerary snapshot handed to readers.
type State struct {
	Request    *gateway.ItineraryRequest
	Itinerary  *gateway.ItineraryResponse
	Generating bool
	Err        string
}

// Store is the itinerary state container. Like the flight store, a
// generation counter discards resolutions of superseded requests.
type Store struct {
	api gateway.API
	log *zap.Logger

	mu      sync.Mutex
	state   State
	subs    map[int]func(State)
	nextSub int
	genSeq  uint64
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New creates an itinerary store over the given gateway.
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

// State returns a snapshot of the current itinerary state.
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

func (s *Store) subscribers() []func(State) {
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

func (s *Store) notify(snapshot State, subs []func(State)) {
	for _, fn := range subs {
		fn(snapshot)
	}
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

// Generate requests a day-by-day trip plan. The request is recorded before
// the (potentially slow) call resolves; a resolution belonging to a
// superseded request is discarded.
func (s *Store) Generate(ctx context.Context, req gateway.ItineraryRequest) (*gateway.ItineraryResponse, error) {
	s.mu.Lock()
	s.genSeq++
	gen := s.genSeq
	s.state.Request = &req
	s.state.Generating = true
	s.state.Err = ""
	snapshot := s.state
	subs := s.subscribers()
	s.mu.Unlock()
	s.notify(snapshot, subs)

	resp, err := s.api.GenerateItinerary(ctx, req)

	s.mu.Lock()
	if gen != s.genSeq {
		s.mu.Unlock()
		s.log.Debug("discarding stale itinerary",
			zap.Uint64("generation", gen),
			zap.String("destination", req.Destination))
		return resp, err
	}
	if err != nil {
		s.state.Err = gateway.UserMessage(err)
		s.state.Generating = false
	} else {
		s.state.Itinerary = resp
		s.state.Generating = false
	}
	snapshot = s.state
	subs = s.subscribers()
	s.mu.Unlock()
	s.notify(snapshot, subs)

	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ClearItinerary resets request and itinerary together, used to start a
// fresh planning flow. The reset is atomic; subscribers never observe a
// partially cleared pair.
func (s *Store) ClearItinerary() {
	s.mu.Lock()
	s.genSeq++ // any in-flight generation becomes stale
	s.state.Request = nil
	s.state.Itinerary = nil
	s.state.Err = ""
	snapshot := s.state
	subs := s.subscribers()
	s.mu.Unlock()
	s.notify(snapshot, subs)
}

// ClearError clears the surfaced error message. Idempotent.
func (s *Store) ClearError() {
	s.setState(func(st *State) {
		st.Err = ""
	})
}
