package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Regatta/internal/core/posts"
)

func TestPostRepo_CountersMoveOnlyThroughOperations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	communityID := createTestCommunity(t, db)
	author := uuid.NewString()
	post := &posts.Post{ID: uuid.NewString(), AuthorID: author, CommunityID: &communityID, Body: "Race report", PostType: posts.PostTypeRaceReport}
	require.NoError(t, repo.Create(ctx, post))
	assert.False(t, post.CreatedAt.IsZero())

	voter := uuid.NewString()
	for i := 0; i < 2; i++ {
		_, err := repo.AddVote(ctx, post.ID, voter)
		require.NoError(t, err)
	}

	require.NoError(t, repo.CreateComment(ctx, &posts.Comment{ID: uuid.NewString(), PostID: post.ID, AuthorID: voter, Body: "Well sailed"}))

	got, err := repo.GetFeedPost(ctx, post.ID, voter)
	require.NoError(t, err)
	assert.Equal(t, 1, got.VoteCount)
	assert.Equal(t, 1, got.CommentCount)
	assert.True(t, got.Viewer.Voted)

	removed, err := repo.RemoveVote(ctx, post.ID, voter)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repo.RemoveVote(ctx, post.ID, voter)
	require.NoError(t, err)
	assert.False(t, removed)

	got, err = repo.GetFeedPost(ctx, post.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 0, got.VoteCount)
	assert.Nil(t, got.Viewer)

	var postCount int
	require.NoError(t, db.QueryRow(`SELECT post_count FROM communities WHERE id = $1`, communityID).Scan(&postCount))
	assert.Equal(t, 1, postCount)
}

func TestPostRepo_MissingTargets(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	missing := uuid.NewString()
	err := repo.Create(ctx, &posts.Post{ID: uuid.NewString(), AuthorID: uuid.NewString(), CommunityID: &missing, Body: "x", PostType: posts.PostTypeDiscussion})
	assert.ErrorIs(t, err, posts.ErrCommunityNotFound)

	_, err = repo.AddVote(ctx, uuid.NewString(), uuid.NewString())
	assert.ErrorIs(t, err, posts.ErrNotFound)

	_, err = repo.GetFeedPost(ctx, uuid.NewString(), "")
	assert.ErrorIs(t, err, posts.ErrNotFound)
}

func TestReindexCounts_RepairsDrift(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	communityID := createTestCommunity(t, db)
	postID := insertTestPost(t, db, communityID, time.Now(), 9) // no vote rows behind the 9

	report, err := ReindexCounts(ctx, db)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, report.PostVotes, int64(1))

	var votes int
	require.NoError(t, db.QueryRow(`SELECT vote_count FROM community_posts WHERE id = $1`, postID).Scan(&votes))
	assert.Equal(t, 0, votes)
}
