package venues

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

type venueService struct {
	repo  Repository
	cache *lru.Cache[string, *Venue]
}

// NewVenueService creates a venue service. Venues change rarely, so lookups by
// id are cached.
func NewVenueService(repo Repository) Service {
	cache, err := lru.New[string, *Venue](512)
	if err != nil {
		panic(fmt.Sprintf("failed to create venue cache: %v", err))
	}
	return &venueService{repo: repo, cache: cache}
}

func (s *venueService) GetVenue(ctx context.Context, id string) (*Venue, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, NewValidationError("id", "must be a valid id")
	}
	if v, ok := s.cache.Get(id); ok {
		return v, nil
	}

	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Add(id, v)
	return v, nil
}

// ListVenues lists venues, nearest first when a point is given, otherwise by name
func (s *venueService) ListVenues(ctx context.Context, req ListVenuesRequest) ([]*VenueWithDistance, error) {
	if req.Limit <= 0 {
		req.Limit = defaultListLimit
	}
	if req.Limit > maxListLimit {
		req.Limit = maxListLimit
	}
	req.Country = strings.ToUpper(strings.TrimSpace(req.Country))

	filter := VenueFilter{Country: req.Country}
	if req.Near != nil {
		if !ValidPoint(*req.Near) {
			return nil, NewValidationError("near", "latitude must be within ±90 and longitude within ±180")
		}
		if req.RadiusNM < 0 {
			return nil, NewValidationError("radiusNm", "must not be negative")
		}
		if req.RadiusNM > 0 {
			filter.Box = boxAround(*req.Near, req.RadiusNM)
		}
	} else if req.RadiusNM != 0 {
		return nil, NewValidationError("radiusNm", "requires a search point")
	}

	venues, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}

	out := make([]*VenueWithDistance, 0, len(venues))
	for _, v := range venues {
		item := &VenueWithDistance{Venue: v}
		if req.Near != nil {
			d := DistanceNM(*req.Near, Point{Lat: v.Latitude, Lon: v.Longitude})
			if req.RadiusNM > 0 && d > req.RadiusNM {
				continue
			}
			item.DistanceNM = &d
		}
		out = append(out, item)
	}

	if req.Near != nil {
		sort.SliceStable(out, func(i, j int) bool {
			return *out[i].DistanceNM < *out[j].DistanceNM
		})
	}
	if len(out) > req.Limit {
		out = out[:req.Limit]
	}
	return out, nil
}

// PlanCircuit costs a trip through venues in the given order. The first leg
// starts at Start when set, otherwise at the first venue with no travel.
func (s *venueService) PlanCircuit(ctx context.Context, req PlanCircuitRequest) (*CircuitPlan, error) {
	if len(req.VenueIDs) == 0 {
		return nil, NewValidationError("venueIds", "at least one venue is required")
	}
	if len(req.VenueIDs) > maxCircuitStops {
		return nil, NewValidationError("venueIds", fmt.Sprintf("at most %d venues per circuit", maxCircuitStops))
	}
	ids := make([]string, len(req.VenueIDs))
	for i, id := range req.VenueIDs {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, NewValidationError("venueIds", fmt.Sprintf("invalid venue id %q", id))
		}
		ids[i] = parsed.String()
	}
	if req.Budget < 0 || math.IsNaN(req.Budget) {
		return nil, NewValidationError("budget", "must not be negative")
	}
	if req.CostPerNM < 0 {
		return nil, NewValidationError("costPerNm", "must not be negative")
	}
	if req.CostPerNM == 0 {
		req.CostPerNM = DefaultCostPerNM
	}
	if req.Start != nil && !ValidPoint(*req.Start) {
		return nil, NewValidationError("start", "latitude must be within ±90 and longitude within ±180")
	}

	stops, err := s.lookupAll(ctx, ids)
	if err != nil {
		return nil, err
	}

	plan := &CircuitPlan{
		Budget: req.Budget,
		Legs:   make([]Leg, 0, len(stops)),
	}
	prev := req.Start
	prevID := ""
	for _, v := range stops {
		here := Point{Lat: v.Latitude, Lon: v.Longitude}
		leg := Leg{
			FromVenueID: prevID,
			ToVenueID:   v.ID,
			ToName:      v.Name,
			EntryFee:    v.EntryFee,
		}
		if prev != nil {
			leg.DistanceNM = roundTo(DistanceNM(*prev, here), 1)
			leg.TravelCost = roundTo(leg.DistanceNM*req.CostPerNM, 2)
		}
		plan.Legs = append(plan.Legs, leg)

		plan.TotalDistanceNM += leg.DistanceNM
		plan.TravelCost += leg.TravelCost
		plan.EntryFees += leg.EntryFee

		prev = &here
		prevID = v.ID
	}

	plan.TotalDistanceNM = roundTo(plan.TotalDistanceNM, 1)
	plan.TravelCost = roundTo(plan.TravelCost, 2)
	plan.EntryFees = roundTo(plan.EntryFees, 2)
	plan.TotalCost = roundTo(plan.TravelCost+plan.EntryFees, 2)
	plan.Remaining = roundTo(plan.Budget-plan.TotalCost, 2)
	plan.WithinBudget = plan.TotalCost <= plan.Budget
	return plan, nil
}

// lookupAll resolves ids in order, hitting the repository once for cache misses
func (s *venueService) lookupAll(ctx context.Context, ids []string) ([]*Venue, error) {
	found := make(map[string]*Venue, len(ids))
	var missing []string
	for _, id := range ids {
		if v, ok := s.cache.Get(id); ok {
			found[id] = v
		} else if _, queued := found[id]; !queued {
			found[id] = nil
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		venues, err := s.repo.GetByIDs(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("failed to load venues: %w", err)
		}
		for _, v := range venues {
			found[v.ID] = v
			s.cache.Add(v.ID, v)
		}
	}

	stops := make([]*Venue, 0, len(ids))
	for _, id := range ids {
		v := found[id]
		if v == nil {
			return nil, fmt.Errorf("%w: %s", ErrVenueNotFound, id)
		}
		stops = append(stops, v)
	}
	return stops, nil
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
