package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevLuiggi/travelsia-go/pkg/credentials"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *credentials.MemoryStore) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	creds := credentials.NewMemoryStore()
	client, err := New(server.URL, WithCredentialStore(creds))
	require.NoError(t, err)
	return client, creds
}

func TestLoginStoresToken(t *testing.T) {
	client, creds := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ana@example.com", req.Email)

		_ = json.NewEncoder(w).Encode(LoginResponse{AccessToken: "tok-123"})
	}))

	resp, err := client.Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok-123", resp.AccessToken)
	assert.True(t, client.IsAuthenticated())

	persisted, err := creds.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-123", persisted)
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_ = json.NewEncoder(w).Encode(AuthProfile{UserID: "u1", Email: "ana@example.com", Role: "USER"})
	}))

	client.SetToken("tok-abc")
	profile, err := client.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-abc", gotAuth)
	assert.Equal(t, "u1", profile.UserID)
}

func TestPersistedTokenLoadedAtStartup(t *testing.T) {
	creds := credentials.NewMemoryStore()
	require.NoError(t, creds.Save("tok-persisted"))

	client, err := New("http://localhost:0", WithCredentialStore(creds))
	require.NoError(t, err)
	assert.True(t, client.IsAuthenticated())
	assert.Equal(t, "tok-persisted", client.Token())
}

func TestUnauthorizedClearsTokenAndNotifies(t *testing.T) {
	client, creds := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(apiErrorBody{StatusCode: 401, Message: "Unauthorized"})
	}))

	client.SetToken("tok-expired")

	invalidated := false
	client.OnSessionInvalidated(func() { invalidated = true })

	_, err := client.Profile(context.Background())
	require.Error(t, err)
	assert.True(t, IsAuthError(err))
	assert.True(t, invalidated)
	assert.False(t, client.IsAuthenticated())

	_, err = creds.Load()
	assert.ErrorIs(t, err, credentials.ErrNoToken)
}

func TestSearchFlightsQuery(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/flights/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "LIM", q.Get("origin"))
		assert.Equal(t, "MAD", q.Get("destination"))
		assert.Equal(t, "2025-12-01", q.Get("departureDate"))
		assert.Equal(t, "1", q.Get("adults"))
		assert.Empty(t, q.Get("returnDate"))

		_ = json.NewEncoder(w).Encode(SearchResponse{
			SearchID: "s1",
			Offers:   []FlightOffer{{ID: "o1"}},
		})
	}))

	// Lowercase codes must be normalized before the request goes out.
	resp, err := client.SearchFlights(context.Background(), SearchParams{
		Origin:        "lim",
		Destination:   "mad",
		DepartureDate: "2025-12-01",
		Adults:        1,
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", resp.SearchID)
	require.Len(t, resp.Offers, 1)
}

func TestSearchFlightsRejectsBadIATA(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request must not reach the backend")
	}))

	_, err := client.SearchFlights(context.Background(), SearchParams{
		Origin:        "LIMA",
		Destination:   "MAD",
		DepartureDate: "2025-12-01",
		Adults:        1,
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestGenerateItinerary(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/ai/full-itinerary", r.URL.Path)

		var req ItineraryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Madrid", req.Destination)
		assert.Equal(t, float64(1500), req.Budget)

		_ = json.NewEncoder(w).Encode(ItineraryResponse{
			Summary: "Three days in Madrid",
			Itinerary: []DayPlan{
				{Day: 1, Date: "2025-12-01"},
				{Day: 2, Date: "2025-12-02"},
				{Day: 3, Date: "2025-12-03"},
			},
		})
	}))

	resp, err := client.GenerateItinerary(context.Background(), ItineraryRequest{
		Destination: "Madrid",
		StartDate:   "2025-12-01",
		EndDate:     "2025-12-03",
		Budget:      1500,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Itinerary, 3)
}

func TestBackendErrorEnvelope(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(apiErrorBody{StatusCode: 409, Message: "email already registered"})
	}))

	_, err := client.Register(context.Background(), RegisterRequest{Email: "ana@example.com", Password: "pw"})
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, ErrorCodeConflict, apiErr.Code)
	assert.Equal(t, "email already registered", apiErr.Message)
	assert.Equal(t, "email already registered", UserMessage(err))
}

func TestNetworkFailure(t *testing.T) {
	client, err := New("http://127.0.0.1:1", WithCredentialStore(credentials.NewMemoryStore()))
	require.NoError(t, err)

	_, err = client.Profile(context.Background())
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
	assert.Equal(t, "An unexpected error occurred.", UserMessage(err))
}

func TestUpdatePreferencesRejectsDriftedEnums(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request must not reach the backend")
	}))

	style := TravelStyle("luxury") // drifted alias of "premium"
	_, err := client.UpdatePreferences(context.Background(), UserPreferences{TravelStyle: &style})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}
