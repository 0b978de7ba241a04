package gateway

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/DevLuiggi/travelsia-go/internal/observability"
)

// InstrumentedClient wraps an API with otel spans and Prometheus metrics.
// Every backend call is recorded with its operation name, outcome, and
// duration; token methods pass through untouched.
type InstrumentedClient struct {
	api     API
	enabled bool
}

// NewInstrumentedClient wraps api with instrumentation.
func NewInstrumentedClient(api API) *InstrumentedClient {
	return &InstrumentedClient{api: api, enabled: true}
}

// WrapAPI wraps an API with instrumentation if not already wrapped.
func WrapAPI(api API) API {
	if _, ok := api.(*InstrumentedClient); ok {
		return api
	}
	return NewInstrumentedClient(api)
}

func (c *InstrumentedClient) observe(ctx context.Context, op string, fn func(context.Context) error) error {
	if !c.enabled {
		return fn(ctx)
	}

	ctx, span := observability.StartSpan(ctx, "gateway."+op,
		trace.WithAttributes(attribute.String("gateway.operation", op)),
	)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	status := "ok"
	if err != nil {
		span.RecordError(err)
		status = ErrorCodeUnknown
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			status = apiErr.Code
			span.SetAttributes(attribute.Int("gateway.status_code", apiErr.StatusCode))
			if apiErr.StatusCode == 401 {
				observability.RecordSessionInvalidation()
			}
		}
	}
	span.SetAttributes(
		attribute.Int64("gateway.duration_ms", duration.Milliseconds()),
		attribute.Bool("gateway.success", err == nil),
	)
	observability.RecordAPIRequest(op, status, duration)

	return err
}

func (c *InstrumentedClient) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var user *User
	err := c.observe(ctx, "register", func(ctx context.Context) error {
		var err error
		user, err = c.api.Register(ctx, req)
		return err
	})
	return user, err
}

func (c *InstrumentedClient) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var resp *LoginResponse
	err := c.observe(ctx, "login", func(ctx context.Context) error {
		var err error
		resp, err = c.api.Login(ctx, req)
		return err
	})
	return resp, err
}

func (c *InstrumentedClient) Profile(ctx context.Context) (*AuthProfile, error) {
	var profile *AuthProfile
	err := c.observe(ctx, "profile", func(ctx context.Context) error {
		var err error
		profile, err = c.api.Profile(ctx)
		return err
	})
	return profile, err
}

func (c *InstrumentedClient) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*AuthProfile, error) {
	var profile *AuthProfile
	err := c.observe(ctx, "update_profile", func(ctx context.Context) error {
		var err error
		profile, err = c.api.UpdateProfile(ctx, req)
		return err
	})
	return profile, err
}

func (c *InstrumentedClient) Preferences(ctx context.Context) (*UserPreferences, error) {
	var prefs *UserPreferences
	err := c.observe(ctx, "preferences", func(ctx context.Context) error {
		var err error
		prefs, err = c.api.Preferences(ctx)
		return err
	})
	return prefs, err
}

func (c *InstrumentedClient) UpdatePreferences(ctx context.Context, in UserPreferences) (*UserPreferences, error) {
	var prefs *UserPreferences
	err := c.observe(ctx, "update_preferences", func(ctx context.Context) error {
		var err error
		prefs, err = c.api.UpdatePreferences(ctx, in)
		return err
	})
	return prefs, err
}

func (c *InstrumentedClient) SearchFlights(ctx context.Context, params SearchParams) (*SearchResponse, error) {
	var resp *SearchResponse
	err := c.observe(ctx, "search_flights", func(ctx context.Context) error {
		var err error
		resp, err = c.api.SearchFlights(ctx, params)
		return err
	})
	return resp, err
}

func (c *InstrumentedClient) SearchHistory(ctx context.Context, limit int) ([]SearchHistory, error) {
	var history []SearchHistory
	err := c.observe(ctx, "search_history", func(ctx context.Context) error {
		var err error
		history, err = c.api.SearchHistory(ctx, limit)
		return err
	})
	return history, err
}

func (c *InstrumentedClient) SearchDetail(ctx context.Context, searchID string) (*SearchDetail, error) {
	var detail *SearchDetail
	err := c.observe(ctx, "search_detail", func(ctx context.Context) error {
		var err error
		detail, err = c.api.SearchDetail(ctx, searchID)
		return err
	})
	return detail, err
}

func (c *InstrumentedClient) GenerateItinerary(ctx context.Context, req ItineraryRequest) (*ItineraryResponse, error) {
	var resp *ItineraryResponse
	err := c.observe(ctx, "generate_itinerary", func(ctx context.Context) error {
		var err error
		resp, err = c.api.GenerateItinerary(ctx, req)
		return err
	})
	return resp, err
}

func (c *InstrumentedClient) SetToken(token string) { c.api.SetToken(token) }

func (c *InstrumentedClient) ClearToken() { c.api.ClearToken() }

func (c *InstrumentedClient) IsAuthenticated() bool { return c.api.IsAuthenticated() }
