package gateway

import (
	"fmt"
	"strings"
)

// TravelStyle describes how a user prefers to spend while traveling.
type TravelStyle string

const (
	TravelStyleEconomic TravelStyle = "economic"
	TravelStyleBalanced TravelStyle = "balanced"
	TravelStylePremium  TravelStyle = "premium"
)

// Valid reports whether the travel style is one the backend accepts.
func (s TravelStyle) Valid() bool {
	switch s {
	case TravelStyleEconomic, TravelStyleBalanced, TravelStylePremium:
		return true
	}
	return false
}

// ActivityType is a favorite-activity tag in user preferences.
type ActivityType string

const (
	ActivityCulture    ActivityType = "culture"
	ActivityNature     ActivityType = "nature"
	ActivityGastronomy ActivityType = "gastronomy"
	ActivityNightlife  ActivityType = "nightlife"
)

// Valid reports whether the activity tag is one the backend accepts.
func (a ActivityType) Valid() bool {
	switch a {
	case ActivityCulture, ActivityNature, ActivityGastronomy, ActivityNightlife:
		return true
	}
	return false
}

// TimeOfDay slots a trip-plan activity into a part of the day.
type TimeOfDay string

const (
	Morning   TimeOfDay = "Morning"
	Afternoon TimeOfDay = "Afternoon"
	Evening   TimeOfDay = "Evening"
)

// LoginRequest is the credential pair sent to POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// RegisterRequest is the payload for POST /auth/register.
// Registration alone does not issue a session.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User is the persisted user record returned by registration.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// AuthProfile is the authenticated identity returned by GET /auth/profile.
type AuthProfile struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// UpdateProfileRequest carries partial profile fields for PUT /auth/profile.
type UpdateProfileRequest struct {
	Email *string `json:"email,omitempty"`
}

// UserPreferences mirrors GET/PUT /users/preferences.
type UserPreferences struct {
	TravelStyle        *TravelStyle   `json:"travelStyle,omitempty"`
	FavoriteActivities []ActivityType `json:"favoriteActivities,omitempty"`
}

// Validate rejects enum values outside the backend contract.
func (p *UserPreferences) Validate() error {
	if p.TravelStyle != nil && !p.TravelStyle.Valid() {
		return fmt.Errorf("invalid travel style %q", *p.TravelStyle)
	}
	for _, a := range p.FavoriteActivities {
		if !a.Valid() {
			return fmt.Errorf("invalid activity type %q", a)
		}
	}
	return nil
}

// SearchParams are the inputs to GET /flights/search.
type SearchParams struct {
	Origin          string  `json:"origin"`
	Destination     string  `json:"destination"`
	DepartureDate   string  `json:"departureDate"`
	ReturnDate      string  `json:"returnDate,omitempty"`
	Adults          int     `json:"adults"`
	TravelPurpose   string  `json:"travelPurpose,omitempty"`
	EstimatedBudget float64 `json:"estimatedBudget,omitempty"`
}

// Normalize uppercases the IATA codes in place, as the backend expects.
func (p *SearchParams) Normalize() {
	p.Origin = strings.ToUpper(strings.TrimSpace(p.Origin))
	p.Destination = strings.ToUpper(strings.TrimSpace(p.Destination))
}

// Validate applies the client-side checks that precede a search request.
func (p *SearchParams) Validate() error {
	if !isIATA(p.Origin) {
		return fmt.Errorf("origin %q is not a 3-letter IATA code", p.Origin)
	}
	if !isIATA(p.Destination) {
		return fmt.Errorf("destination %q is not a 3-letter IATA code", p.Destination)
	}
	if p.DepartureDate == "" {
		return fmt.Errorf("departure date is required")
	}
	if p.Adults < 1 {
		return fmt.Errorf("at least one adult passenger is required")
	}
	return nil
}

func isIATA(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}

// FlightLocation is one endpoint of a segment: station, optional terminal, time.
type FlightLocation struct {
	IATACode string `json:"iataCode"`
	Terminal string `json:"terminal,omitempty"`
	At       string `json:"at"`
}

// FlightSegment is a single leg flown by one carrier.
type FlightSegment struct {
	Departure     FlightLocation `json:"departure"`
	Arrival       FlightLocation `json:"arrival"`
	CarrierCode   string         `json:"carrierCode"`
	Number        string         `json:"number"`
	Duration      string         `json:"duration"`
	NumberOfStops int            `json:"numberOfStops"`
}

// FlightItinerary is one directional journey of ordered segments.
type FlightItinerary struct {
	Duration string          `json:"duration"`
	Segments []FlightSegment `json:"segments"`
}

// FlightPrice is the priced total for an offer, amounts as decimal strings.
type FlightPrice struct {
	Currency   string `json:"currency"`
	Total      string `json:"total"`
	Base       string `json:"base"`
	GrandTotal string `json:"grandTotal"`
}

// FlightOffer is one bookable option: outbound itinerary, optional return.
type FlightOffer struct {
	ID                     string            `json:"id"`
	Itineraries            []FlightItinerary `json:"itineraries"`
	Price                  FlightPrice       `json:"price"`
	ValidatingAirlineCodes []string          `json:"validatingAirlineCodes"`
	NumberOfBookableSeats  int               `json:"numberOfBookableSeats,omitempty"`
	LastTicketingDate      string            `json:"lastTicketingDate,omitempty"`
}

// SearchResponse is the result of one flight search.
type SearchResponse struct {
	SearchID string        `json:"searchId"`
	Offers   []FlightOffer `json:"offers"`
}

// SearchHistory summarizes one past search.
type SearchHistory struct {
	ID            string `json:"id"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departureDate"`
	ReturnDate    string `json:"returnDate,omitempty"`
	Adults        int    `json:"adults"`
	CreatedAt     string `json:"createdAt"`
}

// OfferSnapshot is an offer as it was captured at search time.
type OfferSnapshot struct {
	ID        string      `json:"id"`
	OfferData FlightOffer `json:"offerData"`
}

// SearchDetail is a past search together with its offer snapshots.
type SearchDetail struct {
	SearchHistory
	Snapshots []OfferSnapshot `json:"snapshots"`
}

// ItineraryFlightInfo is the flight context handed to the itinerary generator.
type ItineraryFlightInfo struct {
	Price     string `json:"price"`
	Currency  string `json:"currency"`
	Airline   string `json:"airline"`
	Departure string `json:"departure"`
	Arrival   string `json:"arrival"`
}

// ItineraryRequest is the payload for POST /ai/full-itinerary.
type ItineraryRequest struct {
	Destination string               `json:"destination"`
	StartDate   string               `json:"startDate"`
	EndDate     string               `json:"endDate"`
	Budget      float64              `json:"budget"`
	SearchID    string               `json:"searchId,omitempty"`
	FlightOffer *ItineraryFlightInfo `json:"flightOffer,omitempty"`
}

// Validate applies the client-side checks that precede a generation request.
func (r *ItineraryRequest) Validate() error {
	if r.Destination == "" {
		return fmt.Errorf("destination is required")
	}
	if r.StartDate == "" || r.EndDate == "" {
		return fmt.Errorf("start and end dates are required")
	}
	if r.Budget <= 0 {
		return fmt.Errorf("budget must be positive")
	}
	return nil
}

// Activity is one planned item within a day.
type Activity struct {
	Time        TimeOfDay `json:"time"`
	Activity    string    `json:"activity"`
	Cost        string    `json:"cost"`
	Description string    `json:"description"`
}

// DayPlan is the ordered plan for one day of the trip.
type DayPlan struct {
	Day        int        `json:"day"`
	Date       string     `json:"date"`
	Activities []Activity `json:"activities"`
}

// BudgetBreakdown splits the trip budget by category.
type BudgetBreakdown struct {
	Flight        string `json:"flight"`
	Accommodation string `json:"accommodation"`
	Activities    string `json:"activities"`
	FoodTransport string `json:"food_transport"`
	Total         string `json:"total"`
}

// RecommendedFlight is the generator's pick among the searched offers.
type RecommendedFlight struct {
	Airline   string `json:"airline"`
	Price     string `json:"price"`
	Departure string `json:"departure"`
	Arrival   string `json:"arrival"`
	Reason    string `json:"reason"`
}

// ItineraryResponse is the generated day-by-day trip plan.
type ItineraryResponse struct {
	Summary           string             `json:"summary"`
	RecommendedFlight *RecommendedFlight `json:"recommended_flight,omitempty"`
	BudgetBreakdown   BudgetBreakdown    `json:"budget_breakdown"`
	Itinerary         []DayPlan          `json:"itinerary"`
	Explanation       string             `json:"explanation"`
}
