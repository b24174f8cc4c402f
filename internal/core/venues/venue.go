package venues

import (
	"context"
	"time"
)

const (
	defaultListLimit = 25
	maxListLimit     = 100
	maxCircuitStops  = 20

	// DefaultCostPerNM is the travel cost per nautical mile when a plan doesn't set one
	DefaultCostPerNM = 2.5
)

// Venue is a sailing venue
type Venue struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country"`
	Region    string    `json:"region,omitempty"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	EntryFee  float64   `json:"entryFee"`
}

// VenueWithDistance is a venue with its distance from the search point
type VenueWithDistance struct {
	*Venue
	DistanceNM *float64 `json:"distanceNm,omitempty"`
}

// ListVenuesRequest filters the directory. When Near is set results are
// ordered by distance and RadiusNM narrows them.
type ListVenuesRequest struct {
	Near     *Point
	Country  string
	RadiusNM float64
	Limit    int
}

// Point is a latitude/longitude pair in degrees
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// BoundingBox narrows a repository scan. MinLon > MaxLon means the box
// crosses the antimeridian.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// VenueFilter is what the repository can filter on
type VenueFilter struct {
	Box     *BoundingBox
	Country string
}

// PlanCircuitRequest asks for a multi-venue regatta circuit
type PlanCircuitRequest struct {
	Start     *Point   `json:"start,omitempty"`
	VenueIDs  []string `json:"venueIds"`
	Budget    float64  `json:"budget"`
	CostPerNM float64  `json:"costPerNm,omitempty"`
}

// Leg is one hop of a circuit
type Leg struct {
	FromVenueID string  `json:"fromVenueId,omitempty"`
	ToVenueID   string  `json:"toVenueId"`
	ToName      string  `json:"toName"`
	DistanceNM  float64 `json:"distanceNm"`
	TravelCost  float64 `json:"travelCost"`
	EntryFee    float64 `json:"entryFee"`
}

// CircuitPlan is the costed circuit
type CircuitPlan struct {
	Legs            []Leg   `json:"legs"`
	TotalDistanceNM float64 `json:"totalDistanceNm"`
	TravelCost      float64 `json:"travelCost"`
	EntryFees       float64 `json:"entryFees"`
	TotalCost       float64 `json:"totalCost"`
	Budget          float64 `json:"budget"`
	Remaining       float64 `json:"remaining"`
	WithinBudget    bool    `json:"withinBudget"`
}

// Service defines the venue directory operations
type Service interface {
	GetVenue(ctx context.Context, id string) (*Venue, error)
	ListVenues(ctx context.Context, req ListVenuesRequest) ([]*VenueWithDistance, error)
	PlanCircuit(ctx context.Context, req PlanCircuitRequest) (*CircuitPlan, error)
}

// Repository defines venue data access
type Repository interface {
	GetByID(ctx context.Context, id string) (*Venue, error)
	GetByIDs(ctx context.Context, ids []string) ([]*Venue, error)
	List(ctx context.Context, filter VenueFilter) ([]*Venue, error)
}
