package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevLuiggi/travelsia-go/pkg/gateway"
)

// fakeAPI implements gateway.API with overridable behavior per call.
type fakeAPI struct {
	mu    sync.Mutex
	token string

	loginFunc       func(ctx context.Context, req gateway.LoginRequest) (*gateway.LoginResponse, error)
	registerFunc    func(ctx context.Context, req gateway.RegisterRequest) (*gateway.User, error)
	profileFunc     func(ctx context.Context) (*gateway.AuthProfile, error)
	preferencesFunc func(ctx context.Context) (*gateway.UserPreferences, error)
	updatePrefsFunc func(ctx context.Context, prefs gateway.UserPreferences) (*gateway.UserPreferences, error)
}

func (f *fakeAPI) Login(ctx context.Context, req gateway.LoginRequest) (*gateway.LoginResponse, error) {
	if f.loginFunc == nil {
		f.SetToken("tok-fake")
		return &gateway.LoginResponse{AccessToken: "tok-fake"}, nil
	}
	resp, err := f.loginFunc(ctx, req)
	if err == nil && resp != nil {
		f.SetToken(resp.AccessToken)
	}
	return resp, err
}

func (f *fakeAPI) Register(ctx context.Context, req gateway.RegisterRequest) (*gateway.User, error) {
	if f.registerFunc == nil {
		return &gateway.User{ID: "u1", Email: req.Email, Role: "USER"}, nil
	}
	return f.registerFunc(ctx, req)
}

func (f *fakeAPI) Profile(ctx context.Context) (*gateway.AuthProfile, error) {
	if f.profileFunc == nil {
		return &gateway.AuthProfile{UserID: "u1", Email: "ana@example.com", Role: "USER"}, nil
	}
	return f.profileFunc(ctx)
}

func (f *fakeAPI) UpdateProfile(ctx context.Context, req gateway.UpdateProfileRequest) (*gateway.AuthProfile, error) {
	profile := &gateway.AuthProfile{UserID: "u1", Email: "ana@example.com", Role: "USER"}
	if req.Email != nil {
		profile.Email = *req.Email
	}
	return profile, nil
}

func (f *fakeAPI) Preferences(ctx context.Context) (*gateway.UserPreferences, error) {
	if f.preferencesFunc == nil {
		style := gateway.TravelStyleBalanced
		return &gateway.UserPreferences{TravelStyle: &style}, nil
	}
	return f.preferencesFunc(ctx)
}

func (f *fakeAPI) UpdatePreferences(ctx context.Context, prefs gateway.UserPreferences) (*gateway.UserPreferences, error) {
	if f.updatePrefsFunc == nil {
		out := prefs
		return &out, nil
	}
	return f.updatePrefsFunc(ctx, prefs)
}

func (f *fakeAPI) SearchFlights(ctx context.Context, params gateway.SearchParams) (*gateway.SearchResponse, error) {
	return &gateway.SearchResponse{}, nil
}

func (f *fakeAPI) SearchHistory(ctx context.Context, limit int) ([]gateway.SearchHistory, error) {
	return nil, nil
}

func (f *fakeAPI) SearchDetail(ctx context.Context, searchID string) (*gateway.SearchDetail, error) {
	return &gateway.SearchDetail{}, nil
}

func (f *fakeAPI) GenerateItinerary(ctx context.Context, req gateway.ItineraryRequest) (*gateway.ItineraryResponse, error) {
	return &gateway.ItineraryResponse{}, nil
}

func (f *fakeAPI) SetToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

func (f *fakeAPI) ClearToken() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
}

func (f *fakeAPI) IsAuthenticated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token != ""
}

// waitFor polls the store until cond holds or the deadline passes.
func waitFor(t *testing.T, s *Store, cond func(State) bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond(s.State()) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestLoginSuccess(t *testing.T) {
	api := &fakeAPI{}
	store := New(api)

	err := store.Login(context.Background(), "ana@example.com", "secret")
	require.NoError(t, err)

	st := store.State()
	assert.True(t, st.Authenticated)
	require.NotNil(t, st.User)
	assert.Equal(t, "ana@example.com", st.User.Email)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Err)
	assert.True(t, api.IsAuthenticated())

	// The preferences prefetch is fire-and-forget; it lands eventually.
	waitFor(t, store, func(st State) bool { return st.Preferences != nil })
}

func TestLoginFailureSurfacesAndReturns(t *testing.T) {
	api := &fakeAPI{
		loginFunc: func(ctx context.Context, req gateway.LoginRequest) (*gateway.LoginResponse, error) {
			return nil, &gateway.APIError{Op: "login", StatusCode: 401, Code: gateway.ErrorCodeAuthentication, Message: "Unauthorized"}
		},
	}
	store := New(api)

	err := store.Login(context.Background(), "ana@example.com", "wrong")
	require.Error(t, err)

	st := store.State()
	assert.False(t, st.Authenticated)
	assert.Nil(t, st.User)
	assert.False(t, st.Loading)
	assert.Equal(t, "Session expired. Please log in again.", st.Err)
}

func TestLoginProfileFailure(t *testing.T) {
	api := &fakeAPI{
		profileFunc: func(ctx context.Context) (*gateway.AuthProfile, error) {
			return nil, &gateway.APIError{Op: "profile", StatusCode: 500, Code: gateway.ErrorCodeServerError, Message: "boom"}
		},
	}
	store := New(api)

	err := store.Login(context.Background(), "ana@example.com", "secret")
	require.Error(t, err)

	st := store.State()
	assert.False(t, st.Authenticated)
	assert.Equal(t, "Server error. Try again later.", st.Err)
}

func TestPreferencesPrefetchFailureIsSwallowed(t *testing.T) {
	prefetched := make(chan struct{})
	api := &fakeAPI{
		preferencesFunc: func(ctx context.Context) (*gateway.UserPreferences, error) {
			defer close(prefetched)
			return nil, &gateway.APIError{Op: "preferences", StatusCode: 500, Code: gateway.ErrorCodeServerError, Message: "boom"}
		},
	}
	store := New(api)

	require.NoError(t, store.Login(context.Background(), "ana@example.com", "secret"))

	select {
	case <-prefetched:
	case <-time.After(2 * time.Second):
		t.Fatal("preferences prefetch never ran")
	}

	// The prefetch failure must not surface in the session error.
	st := store.State()
	assert.True(t, st.Authenticated)
	assert.Empty(t, st.Err)
	assert.Nil(t, st.Preferences)
}

func TestRegisterDoesNotAuthenticate(t *testing.T) {
	api := &fakeAPI{}
	store := New(api)

	err := store.Register(context.Background(), gateway.RegisterRequest{Email: "ana@example.com", Password: "pw"})
	require.NoError(t, err)

	st := store.State()
	assert.False(t, st.Authenticated)
	assert.Nil(t, st.User)
	assert.False(t, api.IsAuthenticated())
}

func TestLogoutIsSynchronous(t *testing.T) {
	api := &fakeAPI{}
	store := New(api)
	require.NoError(t, store.Login(context.Background(), "ana@example.com", "secret"))

	store.Logout()

	st := store.State()
	assert.False(t, st.Authenticated)
	assert.Nil(t, st.User)
	assert.Nil(t, st.Preferences)
	assert.Empty(t, st.Err)
	assert.False(t, api.IsAuthenticated())
}

func TestFetchProfileDemotesOnFailure(t *testing.T) {
	api := &fakeAPI{}
	store := New(api)
	require.NoError(t, store.Login(context.Background(), "ana@example.com", "secret"))

	api.profileFunc = func(ctx context.Context) (*gateway.AuthProfile, error) {
		return nil, &gateway.APIError{Op: "profile", StatusCode: 500, Code: gateway.ErrorCodeServerError, Message: "boom"}
	}

	err := store.FetchProfile(context.Background())
	require.Error(t, err)
	assert.False(t, store.State().Authenticated)
}

func TestFetchProfileNoopWhenAnonymous(t *testing.T) {
	api := &fakeAPI{
		profileFunc: func(ctx context.Context) (*gateway.AuthProfile, error) {
			return nil, errors.New("must not be called")
		},
	}
	store := New(api)

	require.NoError(t, store.FetchProfile(context.Background()))
	assert.False(t, store.State().Authenticated)
}

func TestUpdatePreferencesMirrorsEcho(t *testing.T) {
	api := &fakeAPI{}
	store := New(api)
	require.NoError(t, store.Login(context.Background(), "ana@example.com", "secret"))

	style := gateway.TravelStylePremium
	prefs := gateway.UserPreferences{
		TravelStyle:        &style,
		FavoriteActivities: []gateway.ActivityType{gateway.ActivityCulture, gateway.ActivityNature},
	}
	require.NoError(t, store.UpdatePreferences(context.Background(), prefs))

	st := store.State()
	require.NotNil(t, st.Preferences)
	require.NotNil(t, st.Preferences.TravelStyle)
	assert.Equal(t, gateway.TravelStylePremium, *st.Preferences.TravelStyle)
	assert.Equal(t, prefs.FavoriteActivities, st.Preferences.FavoriteActivities)
}

func TestCheckAuthWithoutToken(t *testing.T) {
	api := &fakeAPI{}
	store := New(api)

	store.CheckAuth(context.Background())

	st := store.State()
	assert.False(t, st.Authenticated)
	assert.Nil(t, st.User)
}

func TestCheckAuthInvalidSession(t *testing.T) {
	api := &fakeAPI{}
	api.SetToken("tok-stale")
	api.profileFunc = func(ctx context.Context) (*gateway.AuthProfile, error) {
		return nil, &gateway.APIError{Op: "profile", StatusCode: 401, Code: gateway.ErrorCodeAuthentication, Message: "Unauthorized"}
	}
	store := New(api)

	store.CheckAuth(context.Background())

	assert.False(t, store.State().Authenticated)
	assert.False(t, api.IsAuthenticated())
}

func TestCheckAuthConfirmsSession(t *testing.T) {
	api := &fakeAPI{}
	api.SetToken("tok-valid")
	store := New(api)

	store.CheckAuth(context.Background())

	st := store.State()
	assert.True(t, st.Authenticated)
	require.NotNil(t, st.User)

	waitFor(t, store, func(st State) bool { return st.Preferences != nil })
}

func TestForceAnonymous(t *testing.T) {
	api := &fakeAPI{}
	store := New(api)
	require.NoError(t, store.Login(context.Background(), "ana@example.com", "secret"))

	store.ForceAnonymous()

	st := store.State()
	assert.False(t, st.Authenticated)
	assert.Nil(t, st.User)
	assert.Nil(t, st.Preferences)
}

func TestClearErrorIdempotent(t *testing.T) {
	api := &fakeAPI{
		loginFunc: func(ctx context.Context, req gateway.LoginRequest) (*gateway.LoginResponse, error) {
			return nil, &gateway.APIError{Op: "login", StatusCode: 500, Code: gateway.ErrorCodeServerError, Message: "boom"}
		},
	}
	store := New(api)

	_ = store.Login(context.Background(), "ana@example.com", "secret")
	require.NotEmpty(t, store.State().Err)

	store.ClearError()
	assert.Empty(t, store.State().Err)
	store.ClearError()
	assert.Empty(t, store.State().Err)
}

func TestSubscribeNotifies(t *testing.T) {
	api := &fakeAPI{}
	store := New(api)

	var mu sync.Mutex
	var seen []bool
	cancel := store.Subscribe(func(st State) {
		mu.Lock()
		seen = append(seen, st.Authenticated)
		mu.Unlock()
	})
	defer cancel()

	require.NoError(t, store.Login(context.Background(), "ana@example.com", "secret"))

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	assert.True(t, seen[len(seen)-1])
}
