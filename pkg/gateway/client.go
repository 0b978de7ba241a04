// Package gateway is the single point of contact with the travelsia backend.
// It owns the bearer token, normalizes every failure into an APIError, and
// exposes one typed method per backend operation. It performs no retries,
// batching, or caching beyond the token.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DevLuiggi/travelsia-go/pkg/credentials"
)

// DefaultTimeout accommodates the slow AI-generation call.
const DefaultTimeout = 60 * time.Second

// API is the backend operation set. Stores depend on this interface so tests
// and instrumentation can substitute the concrete client.
type API interface {
	// Auth.
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Profile(ctx context.Context) (*AuthProfile, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*AuthProfile, error)

	// Preferences.
	Preferences(ctx context.Context) (*UserPreferences, error)
	UpdatePreferences(ctx context.Context, prefs UserPreferences) (*UserPreferences, error)

	// Flights.
	SearchFlights(ctx context.Context, params SearchParams) (*SearchResponse, error)
	SearchHistory(ctx context.Context, limit int) ([]SearchHistory, error)
	SearchDetail(ctx context.Context, searchID string) (*SearchDetail, error)

	// AI itinerary.
	GenerateItinerary(ctx context.Context, req ItineraryRequest) (*ItineraryResponse, error)

	// Token management.
	SetToken(token string)
	ClearToken()
	IsAuthenticated() bool
}

// Client implements API over JSON/HTTPS.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      credentials.Store
	log        *zap.Logger

	mu    sync.RWMutex
	token string

	handlersMu sync.RWMutex
	handlers   []func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout overrides the transport timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithCredentialStore sets the token persistence backend.
func WithCredentialStore(s credentials.Store) Option {
	return func(c *Client) { c.creds = s }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a gateway client for the backend at baseURL and loads any
// previously persisted token.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("base URL is required")
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		creds:      credentials.NewMemoryStore(),
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	token, err := c.creds.Load()
	switch {
	case err == nil:
		c.token = token
	case errors.Is(err, credentials.ErrNoToken):
		// Anonymous start.
	default:
		return nil, fmt.Errorf("load token: %w", err)
	}

	return c, nil
}

// OnSessionInvalidated registers a handler called whenever any request comes
// back 401. The token is already cleared when handlers run. Handlers must not
// block; they fire on the goroutine of whichever call hit the failure.
func (c *Client) OnSessionInvalidated(fn func()) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()
	c.handlers = append(c.handlers, fn)
}

// SetToken stores and persists the credential.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()

	if err := c.creds.Save(token); err != nil {
		c.log.Warn("persist token failed", zap.Error(err))
	}
}

// ClearToken erases the credential from memory and durable storage.
func (c *Client) ClearToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()

	if err := c.creds.Clear(); err != nil {
		c.log.Warn("clear token failed", zap.Error(err))
	}
}

// IsAuthenticated reports whether a token is currently held.
func (c *Client) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

// Token returns the currently held token, or "" when anonymous.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) sessionInvalidated() {
	c.ClearToken()

	c.handlersMu.RLock()
	handlers := make([]func(), len(c.handlers))
	copy(handlers, c.handlers)
	c.handlersMu.RUnlock()

	for _, fn := range handlers {
		fn()
	}
}

// apiErrorBody is the backend's error envelope.
type apiErrorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error,omitempty"`
}

// do issues one request and decodes the JSON response into out (when non-nil).
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}

	requestID := uuid.New().String()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("request failed",
			zap.String("op", op),
			zap.String("request_id", requestID),
			zap.Error(err))
		return newAPIError(op, 0, err.Error(), err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusUnauthorized {
		// Global side effect: any 401 de-authenticates the whole client.
		c.sessionInvalidated()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.handleErrorResponse(op, requestID, resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func (c *Client) handleErrorResponse(op, requestID string, resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)

	message := http.StatusText(resp.StatusCode)
	var envelope apiErrorBody
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Message != "" {
		message = envelope.Message
	}

	c.log.Warn("backend error",
		zap.String("op", op),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.String("message", message))

	return newAPIError(op, resp.StatusCode, message, nil)
}

// Register creates a user account. Registration does not issue a session.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var user User
	if err := c.do(ctx, "register", http.MethodPost, "/auth/register", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a bearer token and stores it.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", nil, req, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken != "" {
		c.SetToken(resp.AccessToken)
	}
	return &resp, nil
}

// Profile fetches the authenticated identity.
func (c *Client) Profile(ctx context.Context) (*AuthProfile, error) {
	var profile AuthProfile
	if err := c.do(ctx, "profile", http.MethodGet, "/auth/profile", nil, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile applies a partial profile mutation.
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*AuthProfile, error) {
	var profile AuthProfile
	if err := c.do(ctx, "update_profile", http.MethodPut, "/auth/profile", nil, req, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Preferences fetches the user's travel preferences.
func (c *Client) Preferences(ctx context.Context) (*UserPreferences, error) {
	var prefs UserPreferences
	if err := c.do(ctx, "preferences", http.MethodGet, "/users/preferences", nil, nil, &prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

// UpdatePreferences replaces the user's travel preferences.
func (c *Client) UpdatePreferences(ctx context.Context, prefs UserPreferences) (*UserPreferences, error) {
	if err := prefs.Validate(); err != nil {
		return nil, newAPIError("update_preferences", http.StatusBadRequest, err.Error(), err)
	}
	var updated UserPreferences
	if err := c.do(ctx, "update_preferences", http.MethodPut, "/users/preferences", nil, prefs, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// SearchFlights runs one flight search. IATA codes are normalized to
// uppercase before the request goes out.
func (c *Client) SearchFlights(ctx context.Context, params SearchParams) (*SearchResponse, error) {
	params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, newAPIError("search_flights", http.StatusBadRequest, err.Error(), err)
	}

	query := url.Values{}
	query.Set("origin", params.Origin)
	query.Set("destination", params.Destination)
	query.Set("departureDate", params.DepartureDate)
	query.Set("adults", strconv.Itoa(params.Adults))
	if params.ReturnDate != "" {
		query.Set("returnDate", params.ReturnDate)
	}
	if params.TravelPurpose != "" {
		query.Set("travelPurpose", params.TravelPurpose)
	}
	if params.EstimatedBudget > 0 {
		query.Set("estimatedBudget", strconv.FormatFloat(params.EstimatedBudget, 'f', -1, 64))
	}

	var resp SearchResponse
	if err := c.do(ctx, "search_flights", http.MethodGet, "/flights/search", query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchHistory fetches the caller's most recent searches.
func (c *Client) SearchHistory(ctx context.Context, limit int) ([]SearchHistory, error) {
	if limit <= 0 {
		limit = 10
	}
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	var history []SearchHistory
	if err := c.do(ctx, "search_history", http.MethodGet, "/flights/my-searches", query, nil, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// SearchDetail fetches one past search with its offer snapshots.
func (c *Client) SearchDetail(ctx context.Context, searchID string) (*SearchDetail, error) {
	if searchID == "" {
		return nil, newAPIError("search_detail", http.StatusBadRequest, "search id is required", nil)
	}
	var detail SearchDetail
	if err := c.do(ctx, "search_detail", http.MethodGet, "/flights/searches/"+url.PathEscape(searchID), nil, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// GenerateItinerary requests an AI-generated day-by-day trip plan. This is
// the slow call the transport timeout is sized for.
func (c *Client) GenerateItinerary(ctx context.Context, req ItineraryRequest) (*ItineraryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, newAPIError("generate_itinerary", http.StatusBadRequest, err.Error(), err)
	}
	var resp ItineraryResponse
	if err := c.do(ctx, "generate_itinerary", http.MethodPost, "/ai/full-itinerary", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
