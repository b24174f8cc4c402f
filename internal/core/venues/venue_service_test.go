package venues

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	cowesID      = "aaaaaaaa-0000-4000-8000-000000000001"
	portsmouthID = "aaaaaaaa-0000-4000-8000-000000000002"
	sydneyID     = "aaaaaaaa-0000-4000-8000-000000000003"
)

var (
	cowes      = &Venue{ID: cowesID, Name: "Cowes", Country: "GB", Latitude: 50.7640, Longitude: -1.2990, EntryFee: 120}
	portsmouth = &Venue{ID: portsmouthID, Name: "Portsmouth", Country: "GB", Latitude: 50.8198, Longitude: -1.0880, EntryFee: 80}
	sydney     = &Venue{ID: sydneyID, Name: "Sydney Harbour", Country: "AU", Latitude: -33.8568, Longitude: 151.2153, EntryFee: 200}
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) GetByID(ctx context.Context, id string) (*Venue, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Venue), args.Error(1)
}

func (m *mockRepository) GetByIDs(ctx context.Context, ids []string) ([]*Venue, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Venue), args.Error(1)
}

func (m *mockRepository) List(ctx context.Context, filter VenueFilter) ([]*Venue, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Venue), args.Error(1)
}

func TestDistanceNM(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
	}{
		{"same point", Point{50, -1}, Point{50, -1}, 0},
		{"one degree of latitude", Point{0, 0}, Point{1, 0}, 60.04},
		{"one degree of longitude at the equator", Point{0, 0}, Point{0, 1}, 60.04},
		{"Cowes to Portsmouth", Point{50.7640, -1.2990}, Point{50.8198, -1.0880}, 8.68},
		{"Sydney to Auckland", Point{-33.8568, 151.2153}, Point{-36.8406, 174.7400}, 1162.86},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DistanceNM(tt.a, tt.b), 0.01)
			assert.InDelta(t, DistanceNM(tt.a, tt.b), DistanceNM(tt.b, tt.a), 1e-9)
		})
	}
}

func TestBoxAround(t *testing.T) {
	t.Run("mid latitude", func(t *testing.T) {
		box := boxAround(Point{Lat: 50, Lon: -1}, 60)
		assert.InDelta(t, 49, box.MinLat, 1e-9)
		assert.InDelta(t, 51, box.MaxLat, 1e-9)
		assert.InDelta(t, -2.5557, box.MinLon, 1e-3)
		assert.InDelta(t, 0.5557, box.MaxLon, 1e-3)
	})

	t.Run("wraps across the antimeridian", func(t *testing.T) {
		box := boxAround(Point{Lat: 0, Lon: 179.5}, 60)
		assert.InDelta(t, 178.5, box.MinLon, 1e-9)
		assert.InDelta(t, -179.5, box.MaxLon, 1e-9)
		assert.Greater(t, box.MinLon, box.MaxLon)

		// a venue just over the line is inside the wrapped box
		lon := -179.8
		assert.True(t, lon >= box.MinLon || lon <= box.MaxLon)
		assert.Less(t, DistanceNM(Point{0, 179.5}, Point{0, lon}), 60.0)
	})

	t.Run("wraps from the west side too", func(t *testing.T) {
		box := boxAround(Point{Lat: 0, Lon: -179.5}, 60)
		assert.InDelta(t, 179.5, box.MinLon, 1e-9)
		assert.InDelta(t, -178.5, box.MaxLon, 1e-9)
	})

	t.Run("near the pole spans every longitude", func(t *testing.T) {
		box := boxAround(Point{Lat: 89.9, Lon: 10}, 60)
		assert.Equal(t, -180.0, box.MinLon)
		assert.Equal(t, 180.0, box.MaxLon)
		assert.Equal(t, 90.0, box.MaxLat)
	})

	t.Run("huge radius spans every longitude", func(t *testing.T) {
		box := boxAround(Point{Lat: 0, Lon: 0}, 12000)
		assert.Equal(t, -180.0, box.MinLon)
		assert.Equal(t, 180.0, box.MaxLon)
		assert.Equal(t, -90.0, box.MinLat)
	})
}

func TestListVenues_AcrossAntimeridian(t *testing.T) {
	repo := new(mockRepository)
	svc := NewVenueService(repo)
	ctx := context.Background()

	suva := &Venue{ID: "aaaaaaaa-0000-4000-8000-000000000004", Name: "Suva", Country: "FJ", Latitude: -18.1416, Longitude: 178.4419}
	taveuni := &Venue{ID: "aaaaaaaa-0000-4000-8000-000000000005", Name: "Taveuni", Country: "FJ", Latitude: -16.85, Longitude: -179.95}

	repo.On("List", ctx, mock.MatchedBy(func(f VenueFilter) bool {
		return f.Box != nil && f.Box.MinLon > f.Box.MaxLon
	})).Return([]*Venue{suva, taveuni}, nil)

	list, err := svc.ListVenues(ctx, ListVenuesRequest{
		Near:     &Point{Lat: -17.0, Lon: 179.9},
		RadiusNM: 100,
	})
	require.NoError(t, err)
	require.Len(t, list, 1, "Suva is beyond 100nm")
	assert.Equal(t, "Taveuni", list[0].Name)
	repo.AssertExpectations(t)
}

func TestListVenues_NearestFirstWithinRadius(t *testing.T) {
	repo := new(mockRepository)
	svc := NewVenueService(repo)
	ctx := context.Background()

	repo.On("List", ctx, mock.MatchedBy(func(f VenueFilter) bool {
		return f.Box != nil && f.Box.MinLat < 50.8 && f.Box.MaxLat > 50.8
	})).Return([]*Venue{cowes, sydney, portsmouth}, nil)

	list, err := svc.ListVenues(ctx, ListVenuesRequest{
		Near:     &Point{Lat: 50.80, Lon: -1.10},
		RadiusNM: 50,
	})
	require.NoError(t, err)
	require.Len(t, list, 2, "Sydney is outside the radius")
	assert.Equal(t, "Portsmouth", list[0].Name)
	assert.Equal(t, "Cowes", list[1].Name)
	assert.Less(t, *list[0].DistanceNM, *list[1].DistanceNM)
}

func TestListVenues_WithoutPointKeepsRepositoryOrder(t *testing.T) {
	repo := new(mockRepository)
	svc := NewVenueService(repo)
	ctx := context.Background()

	repo.On("List", ctx, VenueFilter{Country: "GB"}).Return([]*Venue{cowes, portsmouth}, nil)

	list, err := svc.ListVenues(ctx, ListVenuesRequest{Country: " gb ", Limit: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Cowes", list[0].Name)
	assert.Nil(t, list[0].DistanceNM)
}

func TestListVenues_Validation(t *testing.T) {
	svc := NewVenueService(new(mockRepository))
	ctx := context.Background()

	_, err := svc.ListVenues(ctx, ListVenuesRequest{Near: &Point{Lat: 91, Lon: 0}})
	assert.True(t, IsValidationError(err))

	_, err = svc.ListVenues(ctx, ListVenuesRequest{RadiusNM: 10})
	assert.True(t, IsValidationError(err))
}

func TestGetVenue_Cached(t *testing.T) {
	repo := new(mockRepository)
	svc := NewVenueService(repo)
	ctx := context.Background()

	repo.On("GetByID", ctx, cowesID).Return(cowes, nil).Once()

	for i := 0; i < 3; i++ {
		v, err := svc.GetVenue(ctx, cowesID)
		require.NoError(t, err)
		assert.Equal(t, "Cowes", v.Name)
	}
	repo.AssertNumberOfCalls(t, "GetByID", 1)
}

func TestPlanCircuit(t *testing.T) {
	repo := new(mockRepository)
	svc := NewVenueService(repo)
	ctx := context.Background()

	repo.On("GetByIDs", ctx, []string{cowesID, portsmouthID}).Return([]*Venue{portsmouth, cowes}, nil)

	plan, err := svc.PlanCircuit(ctx, PlanCircuitRequest{
		VenueIDs:  []string{cowesID, portsmouthID, cowesID},
		Budget:    300,
		CostPerNM: 2,
	})
	require.NoError(t, err)
	require.Len(t, plan.Legs, 3)

	assert.Equal(t, cowesID, plan.Legs[0].ToVenueID)
	assert.Zero(t, plan.Legs[0].DistanceNM)
	assert.Equal(t, 8.7, plan.Legs[1].DistanceNM)
	assert.Equal(t, 17.4, plan.Legs[1].TravelCost)
	assert.Equal(t, cowesID, plan.Legs[1].FromVenueID)

	assert.Equal(t, 17.4, plan.TotalDistanceNM)
	assert.Equal(t, 34.8, plan.TravelCost)
	assert.Equal(t, 320.0, plan.EntryFees)
	assert.Equal(t, 354.8, plan.TotalCost)
	assert.False(t, plan.WithinBudget)
	assert.Equal(t, -54.8, plan.Remaining)
}

func TestPlanCircuit_FromStartPointWithinBudget(t *testing.T) {
	repo := new(mockRepository)
	svc := NewVenueService(repo)
	ctx := context.Background()

	repo.On("GetByIDs", ctx, []string{portsmouthID}).Return([]*Venue{portsmouth}, nil)

	plan, err := svc.PlanCircuit(ctx, PlanCircuitRequest{
		Start:    &Point{Lat: 50.7640, Lon: -1.2990},
		VenueIDs: []string{portsmouthID},
		Budget:   500,
	})
	require.NoError(t, err)
	require.Len(t, plan.Legs, 1)
	assert.Equal(t, 8.7, plan.Legs[0].DistanceNM)
	assert.InDelta(t, 8.7*DefaultCostPerNM, plan.TravelCost, 0.01)
	assert.True(t, plan.WithinBudget)
}

func TestPlanCircuit_Errors(t *testing.T) {
	repo := new(mockRepository)
	svc := NewVenueService(repo)
	ctx := context.Background()

	_, err := svc.PlanCircuit(ctx, PlanCircuitRequest{})
	assert.True(t, IsValidationError(err))

	_, err = svc.PlanCircuit(ctx, PlanCircuitRequest{VenueIDs: []string{"cowes"}})
	assert.True(t, IsValidationError(err))

	_, err = svc.PlanCircuit(ctx, PlanCircuitRequest{VenueIDs: []string{cowesID}, Budget: -1})
	assert.True(t, IsValidationError(err))

	repo.On("GetByIDs", ctx, []string{sydneyID}).Return([]*Venue{}, nil)
	_, err = svc.PlanCircuit(ctx, PlanCircuitRequest{VenueIDs: []string{sydneyID}})
	assert.True(t, IsNotFound(err))
}
