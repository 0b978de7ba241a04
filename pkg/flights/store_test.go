package flights

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevLuiggi/travelsia-go/pkg/gateway"
)

// fakeAPI implements gateway.API; only the flight operations matter here.
type fakeAPI struct {
	searchFunc  func(ctx context.Context, params gateway.SearchParams) (*gateway.SearchResponse, error)
	historyFunc func(ctx context.Context, limit int) ([]gateway.SearchHistory, error)
	detailFunc  func(ctx context.Context, searchID string) (*gateway.SearchDetail, error)
}

func (f *fakeAPI) SearchFlights(ctx context.Context, params gateway.SearchParams) (*gateway.SearchResponse, error) {
	if f.searchFunc == nil {
		return &gateway.SearchResponse{SearchID: "s1"}, nil
	}
	return f.searchFunc(ctx, params)
}

func (f *fakeAPI) SearchHistory(ctx context.Context, limit int) ([]gateway.SearchHistory, error) {
	if f.historyFunc == nil {
		return nil, nil
	}
	return f.historyFunc(ctx, limit)
}

func (f *fakeAPI) SearchDetail(ctx context.Context, searchID string) (*gateway.SearchDetail, error) {
	if f.detailFunc == nil {
		return &gateway.SearchDetail{}, nil
	}
	return f.detailFunc(ctx, searchID)
}

func (f *fakeAPI) Register(ctx context.Context, req gateway.RegisterRequest) (*gateway.User, error) {
	return nil, nil
}
func (f *fakeAPI) Login(ctx context.Context, req gateway.LoginRequest) (*gateway.LoginResponse, error) {
	return nil, nil
}
func (f *fakeAPI) Profile(ctx context.Context) (*gateway.AuthProfile, error) { return nil, nil }
func (f *fakeAPI) UpdateProfile(ctx context.Context, req gateway.UpdateProfileRequest) (*gateway.AuthProfile, error) {
	return nil, nil
}
func (f *fakeAPI) Preferences(ctx context.Context) (*gateway.UserPreferences, error) {
	return nil, nil
}
func (f *fakeAPI) UpdatePreferences(ctx context.Context, prefs gateway.UserPreferences) (*gateway.UserPreferences, error) {
	return nil, nil
}
func (f *fakeAPI) GenerateItinerary(ctx context.Context, req gateway.ItineraryRequest) (*gateway.ItineraryResponse, error) {
	return nil, nil
}
func (f *fakeAPI) SetToken(token string) {}
func (f *fakeAPI) ClearToken()           {}
func (f *fakeAPI) IsAuthenticated() bool { return true }

func limMad() gateway.SearchParams {
	return gateway.SearchParams{
		Origin:        "LIM",
		Destination:   "MAD",
		DepartureDate: "2025-12-01",
		Adults:        1,
	}
}

func TestSearchFlights(t *testing.T) {
	api := &fakeAPI{
		searchFunc: func(ctx context.Context, params gateway.SearchParams) (*gateway.SearchResponse, error) {
			return &gateway.SearchResponse{
				SearchID: "s1",
				Offers:   []gateway.FlightOffer{{ID: "o1"}},
			}, nil
		},
	}
	store := New(api)

	result, err := store.SearchFlights(context.Background(), limMad())
	require.NoError(t, err)

	st := store.State()
	require.NotNil(t, st.Result)
	assert.Len(t, st.Result.Offers, 1)
	assert.Equal(t, "LIM", st.Params.Origin)
	assert.Equal(t, "s1", result.SearchID)
	assert.False(t, st.Searching)
	assert.Empty(t, st.Err)
}

func TestSearchParamsVisibleWhileLoading(t *testing.T) {
	release := make(chan struct{})
	api := &fakeAPI{
		searchFunc: func(ctx context.Context, params gateway.SearchParams) (*gateway.SearchResponse, error) {
			<-release
			return &gateway.SearchResponse{SearchID: "s1"}, nil
		},
	}
	store := New(api)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = store.SearchFlights(context.Background(), limMad())
	}()

	// Params are recorded before the network call resolves.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		st := store.State()
		if st.Searching && st.Params != nil {
			assert.Equal(t, "LIM", st.Params.Origin)
			close(release)
			<-done
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("pending params never became visible")
}

func TestSearchFailureSurfacesAndReturns(t *testing.T) {
	api := &fakeAPI{
		searchFunc: func(ctx context.Context, params gateway.SearchParams) (*gateway.SearchResponse, error) {
			return nil, &gateway.APIError{Op: "search_flights", StatusCode: 500, Code: gateway.ErrorCodeServerError, Message: "boom"}
		},
	}
	store := New(api)

	_, err := store.SearchFlights(context.Background(), limMad())
	require.Error(t, err)

	st := store.State()
	assert.Equal(t, "Server error. Try again later.", st.Err)
	assert.Nil(t, st.Result)
	assert.False(t, st.Searching)
}

func TestStaleSearchResultDiscarded(t *testing.T) {
	// Search A blocks until released; search B resolves first. A's late
	// resolution must not overwrite B's result.
	releaseA := make(chan struct{})
	api := &fakeAPI{
		searchFunc: func(ctx context.Context, params gateway.SearchParams) (*gateway.SearchResponse, error) {
			if params.Destination == "MAD" {
				<-releaseA
				return &gateway.SearchResponse{SearchID: "search-A"}, nil
			}
			return &gateway.SearchResponse{SearchID: "search-B"}, nil
		},
	}
	store := New(api)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = store.SearchFlights(context.Background(), limMad())
	}()

	// Wait until A is in flight, then issue B.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if st := store.State(); st.Searching {
			break
		}
		time.Sleep(time.Millisecond)
	}

	paramsB := gateway.SearchParams{
		Origin:        "LIM",
		Destination:   "BCN",
		DepartureDate: "2025-12-01",
		Adults:        1,
	}
	_, err := store.SearchFlights(context.Background(), paramsB)
	require.NoError(t, err)
	require.Equal(t, "search-B", store.State().Result.SearchID)

	// Release A and let its stale resolution land.
	close(releaseA)
	wg.Wait()

	st := store.State()
	assert.Equal(t, "search-B", st.Result.SearchID, "stale result must not overwrite the newer one")
	assert.Equal(t, "BCN", st.Params.Destination)
}

func TestSelectOfferAndClearSearch(t *testing.T) {
	api := &fakeAPI{
		searchFunc: func(ctx context.Context, params gateway.SearchParams) (*gateway.SearchResponse, error) {
			return &gateway.SearchResponse{
				SearchID: "s1",
				Offers:   []gateway.FlightOffer{{ID: "o1"}, {ID: "o2"}},
			}, nil
		},
	}
	store := New(api)

	result, err := store.SearchFlights(context.Background(), limMad())
	require.NoError(t, err)

	require.NoError(t, store.SelectOffer(&result.Offers[0]))
	assert.Equal(t, "o1", store.State().Selected.ID)

	store.ClearSearch()

	st := store.State()
	assert.Nil(t, st.Selected)
	assert.Nil(t, st.Result)
	assert.Nil(t, st.Params)
}

func TestSelectOfferRejectsForeignOffer(t *testing.T) {
	api := &fakeAPI{
		searchFunc: func(ctx context.Context, params gateway.SearchParams) (*gateway.SearchResponse, error) {
			return &gateway.SearchResponse{
				SearchID: "s1",
				Offers:   []gateway.FlightOffer{{ID: "o1"}},
			}, nil
		},
	}
	store := New(api)

	_, err := store.SearchFlights(context.Background(), limMad())
	require.NoError(t, err)

	err = store.SelectOffer(&gateway.FlightOffer{ID: "other"})
	assert.ErrorIs(t, err, ErrOfferNotInResult)
	assert.Nil(t, store.State().Selected)
}

func TestNewSearchClearsSelection(t *testing.T) {
	api := &fakeAPI{
		searchFunc: func(ctx context.Context, params gateway.SearchParams) (*gateway.SearchResponse, error) {
			return &gateway.SearchResponse{
				SearchID: "s-" + params.Destination,
				Offers:   []gateway.FlightOffer{{ID: "o-" + params.Destination}},
			}, nil
		},
	}
	store := New(api)

	result, err := store.SearchFlights(context.Background(), limMad())
	require.NoError(t, err)
	require.NoError(t, store.SelectOffer(&result.Offers[0]))

	params := limMad()
	params.Destination = "BCN"
	_, err = store.SearchFlights(context.Background(), params)
	require.NoError(t, err)

	assert.Nil(t, store.State().Selected, "selection must not survive a result-set replacement")
}

func TestFetchSearchHistoryBounded(t *testing.T) {
	api := &fakeAPI{
		historyFunc: func(ctx context.Context, limit int) ([]gateway.SearchHistory, error) {
			// Backend over-returns; the store enforces the bound.
			out := make([]gateway.SearchHistory, 5)
			for i := range out {
				out[i].ID = string(rune('a' + i))
			}
			return out, nil
		},
	}
	store := New(api)

	require.NoError(t, store.FetchSearchHistory(context.Background(), 3))

	st := store.State()
	assert.Len(t, st.History, 3)
	assert.False(t, st.LoadingHistory)
}

func TestHistoryFailureKeepsOtherState(t *testing.T) {
	api := &fakeAPI{
		searchFunc: func(ctx context.Context, params gateway.SearchParams) (*gateway.SearchResponse, error) {
			return &gateway.SearchResponse{SearchID: "s1", Offers: []gateway.FlightOffer{{ID: "o1"}}}, nil
		},
		historyFunc: func(ctx context.Context, limit int) ([]gateway.SearchHistory, error) {
			return nil, &gateway.APIError{Op: "search_history", StatusCode: 500, Code: gateway.ErrorCodeServerError, Message: "boom"}
		},
	}
	store := New(api)

	_, err := store.SearchFlights(context.Background(), limMad())
	require.NoError(t, err)

	require.Error(t, store.FetchSearchHistory(context.Background(), 10))

	st := store.State()
	assert.NotEmpty(t, st.Err)
	assert.NotNil(t, st.Result, "history failure must not disturb the search result")
}

func TestClearErrorIdempotent(t *testing.T) {
	store := New(&fakeAPI{})

	store.ClearError()
	assert.Empty(t, store.State().Err)
	store.ClearError()
	assert.Empty(t, store.State().Err)
}
