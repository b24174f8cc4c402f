package communities

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testUserID      = "11111111-1111-4111-8111-111111111111"
	testCommunityID = "22222222-2222-4222-8222-222222222222"
)

type mockCommunityRepository struct {
	mock.Mock
}

func (m *mockCommunityRepository) GetByID(ctx context.Context, id, viewerID string) (*Community, error) {
	args := m.Called(ctx, id, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Community), args.Error(1)
}

func (m *mockCommunityRepository) GetBySlug(ctx context.Context, slug, viewerID string) (*Community, error) {
	args := m.Called(ctx, slug, viewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Community), args.Error(1)
}

func (m *mockCommunityRepository) List(ctx context.Context, req ListCommunitiesRequest) ([]*Community, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Community), args.Error(1)
}

func (m *mockCommunityRepository) AddMember(ctx context.Context, communityID, userID string) (bool, error) {
	args := m.Called(ctx, communityID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockCommunityRepository) RemoveMember(ctx context.Context, communityID, userID string) (bool, error) {
	args := m.Called(ctx, communityID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockCommunityRepository) IsMember(ctx context.Context, communityID, userID string) (bool, error) {
	args := m.Called(ctx, communityID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockCommunityRepository) ListMemberCommunityIDs(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func TestJoinCommunity_RefetchesMembership(t *testing.T) {
	repo := new(mockCommunityRepository)
	svc := NewCommunityService(repo, nil)
	ctx := context.Background()

	repo.On("AddMember", ctx, testCommunityID, testUserID).Return(true, nil)
	repo.On("GetByID", ctx, testCommunityID, testUserID).Return(&Community{
		ID:          testCommunityID,
		Slug:        "etchells-sydney",
		MemberCount: 13,
		IsMember:    true,
	}, nil)

	community, err := svc.JoinCommunity(ctx, testUserID, testCommunityID)
	require.NoError(t, err)
	assert.True(t, community.IsMember)
	assert.Equal(t, 13, community.MemberCount)
	repo.AssertExpectations(t)
}

func TestJoinCommunity_Twice_IsNoop(t *testing.T) {
	repo := new(mockCommunityRepository)
	svc := NewCommunityService(repo, nil)
	ctx := context.Background()

	repo.On("AddMember", ctx, testCommunityID, testUserID).Return(true, nil).Once()
	repo.On("AddMember", ctx, testCommunityID, testUserID).Return(false, nil).Once()
	repo.On("GetByID", ctx, testCommunityID, testUserID).Return(&Community{ID: testCommunityID, MemberCount: 1, IsMember: true}, nil)

	_, err := svc.JoinCommunity(ctx, testUserID, testCommunityID)
	require.NoError(t, err)
	second, err := svc.JoinCommunity(ctx, testUserID, testCommunityID)
	require.NoError(t, err)
	assert.Equal(t, 1, second.MemberCount)
}

func TestLeaveCommunity_BySlugUsesCache(t *testing.T) {
	repo := new(mockCommunityRepository)
	svc := NewCommunityService(repo, nil)
	ctx := context.Background()

	repo.On("GetBySlug", ctx, "etchells-sydney", "").Return(&Community{ID: testCommunityID}, nil).Once()
	repo.On("RemoveMember", ctx, testCommunityID, testUserID).Return(true, nil)
	repo.On("GetByID", ctx, testCommunityID, testUserID).Return(&Community{ID: testCommunityID, IsMember: false}, nil)

	for i := 0; i < 2; i++ {
		community, err := svc.LeaveCommunity(ctx, testUserID, "Etchells-Sydney")
		require.NoError(t, err)
		assert.False(t, community.IsMember)
	}

	// GetBySlug only once: the second resolution came from the cache
	repo.AssertNumberOfCalls(t, "GetBySlug", 1)
}

func TestJoinCommunity_RequiresUser(t *testing.T) {
	repo := new(mockCommunityRepository)
	svc := NewCommunityService(repo, nil)

	_, err := svc.JoinCommunity(context.Background(), "", testCommunityID)
	assert.ErrorIs(t, err, ErrUnauthorized)
	repo.AssertNotCalled(t, "AddMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveCommunityIdentifier_Invalid(t *testing.T) {
	svc := NewCommunityService(new(mockCommunityRepository), nil)

	_, err := svc.ResolveCommunityIdentifier(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.ResolveCommunityIdentifier(context.Background(), "no spaces allowed")
	assert.True(t, IsValidationError(err))
}

func TestGetCommunity_NotFound(t *testing.T) {
	repo := new(mockCommunityRepository)
	svc := NewCommunityService(repo, nil)
	ctx := context.Background()

	repo.On("GetBySlug", ctx, "ghost-fleet", "").Return(nil, ErrCommunityNotFound)

	_, err := svc.GetCommunity(ctx, "ghost-fleet", testUserID)
	assert.True(t, IsNotFound(err))
}

func TestListCommunities_Validation(t *testing.T) {
	repo := new(mockCommunityRepository)
	svc := NewCommunityService(repo, nil)
	ctx := context.Background()

	_, err := svc.ListCommunities(ctx, ListCommunitiesRequest{Type: "yacht-club"})
	assert.True(t, IsValidationError(err))

	_, err = svc.ListCommunities(ctx, ListCommunitiesRequest{JoinedOnly: true})
	assert.ErrorIs(t, err, ErrUnauthorized)

	repo.On("List", ctx, ListCommunitiesRequest{ViewerID: testUserID, Type: TypeFleet, Limit: 100}).Return([]*Community{{ID: testCommunityID}}, nil)
	list, err := svc.ListCommunities(ctx, ListCommunitiesRequest{ViewerID: testUserID, Type: TypeFleet, Limit: 500, Offset: -3})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
