package postgres

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"Regatta/internal/core/feeds"
	"Regatta/internal/core/posts"
)

// feedRepoBase holds the query building shared by the community and venue feeds.
//
// Every page of one stream is ranked against the same reference time, carried in
// the cursor, so hot and rising ranks do not drift between pages and posts
// created after the first page stay out of the stream until it is refreshed.
//
// INDEXES (004_create_community_posts.sql):
//   - idx_community_posts_community_created / idx_community_posts_venue_created: new, and the
//     base scan for hot and rising (their ranks are computed per row)
//   - idx_community_posts_community_votes: top
type feedRepoBase struct {
	db           *sql.DB
	now          func() time.Time
	cursorSecret string
}

const (
	cursorDelimiter = "::"
	maxCursorLength = 1024
	risingWindow    = "1 day"
)

// feedSortClauses is a whitelist; user input never reaches ORDER BY
var feedSortClauses = map[string]string{
	feeds.SortHot:    `rank DESC, p.created_at DESC, p.id DESC`,
	feeds.SortRising: `rank DESC, p.created_at DESC, p.id DESC`,
	feeds.SortTop:    `p.vote_count DESC, p.created_at DESC, p.id DESC`,
	feeds.SortNew:    `p.created_at DESC, p.id DESC`,
}

var timeframeIntervals = map[string]string{
	"hour":  "1 hour",
	"day":   "1 day",
	"week":  "1 week",
	"month": "1 month",
	"year":  "1 year",
}

func newFeedRepoBase(db *sql.DB, cursorSecret string) *feedRepoBase {
	return &feedRepoBase{
		db:           db,
		now:          time.Now,
		cursorSecret: cursorSecret,
	}
}

// queryArgs numbers positional parameters as they are added
type queryArgs struct {
	values []interface{}
}

func (a *queryArgs) add(v interface{}) string {
	a.values = append(a.values, v)
	return "$" + strconv.Itoa(len(a.values))
}

// feedCursor is the decoded position after the last post of a page
type feedCursor struct {
	ref       time.Time
	createdAt time.Time
	sort      string
	id        string
	rank      float64
	votes     int
}

// rankExpression returns the ranking SQL for sorts that compute one.
// ref is the placeholder of the reference time.
func rankExpression(sort, ref string) string {
	ageHours := fmt.Sprintf(`EXTRACT(EPOCH FROM (%s::timestamptz - p.created_at)) / 3600`, ref)
	switch sort {
	case feeds.SortHot:
		return fmt.Sprintf(`((p.vote_count + 1)::float8 / POWER(%s + 2, 1.5))`, ageHours)
	case feeds.SortRising:
		return fmt.Sprintf(`((p.vote_count + 2 * p.comment_count + 1)::float8 / (%s + 2))`, ageHours)
	default:
		return ""
	}
}

// queryFeed runs one page of a feed. scope returns the WHERE fragment that
// selects the source (community set or venue).
func (r *feedRepoBase) queryFeed(ctx context.Context, req feeds.FeedRequest, scope func(a *queryArgs) string) ([]*posts.FeedPost, *string, error) {
	cursor, err := r.decodeCursor(req.Cursor, req.Sort)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", feeds.ErrInvalidCursor, err)
	}

	ref := r.now().UTC()
	if cursor != nil {
		ref = cursor.ref
	}

	args := &queryArgs{}
	refParam := args.add(ref)

	where := []string{
		scope(args),
		"p.deleted_at IS NULL",
		"p.created_at <= " + refParam,
	}
	if req.PostType != "" {
		where = append(where, "p.post_type = "+args.add(req.PostType))
	}
	switch req.Sort {
	case feeds.SortTop:
		if interval, ok := timeframeIntervals[req.Timeframe]; ok {
			where = append(where, fmt.Sprintf("p.created_at > %s::timestamptz - INTERVAL '%s'", refParam, interval))
		}
	case feeds.SortRising:
		where = append(where, fmt.Sprintf("p.created_at > %s::timestamptz - INTERVAL '%s'", refParam, risingWindow))
	}

	rank := rankExpression(req.Sort, refParam)
	rankSelect := "0::float8"
	if rank != "" {
		rankSelect = rank
	}

	if cursor != nil {
		c, id := args.add(cursor.createdAt), args.add(cursor.id)
		switch req.Sort {
		case feeds.SortNew:
			where = append(where, fmt.Sprintf("(p.created_at, p.id) < (%s, %s::uuid)", c, id))
		case feeds.SortTop:
			where = append(where, fmt.Sprintf("(p.vote_count, p.created_at, p.id) < (%s, %s, %s::uuid)", args.add(cursor.votes), c, id))
		default:
			where = append(where, fmt.Sprintf("(%s, p.created_at, p.id) < (%s::float8, %s, %s::uuid)", rank, args.add(cursor.rank), c, id))
		}
	}

	voted := "FALSE"
	if req.ViewerID != "" {
		voted = fmt.Sprintf(`EXISTS (SELECT 1 FROM post_votes pv WHERE pv.post_id = p.id AND pv.user_id = %s::uuid)`, args.add(req.ViewerID))
	}

	orderBy, ok := feedSortClauses[req.Sort]
	if !ok {
		orderBy = feedSortClauses[feeds.SortHot]
	}

	query := fmt.Sprintf(`
		SELECT
			p.id, p.author_id, COALESCE(up.display_name, ''), up.avatar_url,
			p.community_id, p.venue_id, p.body, p.post_type,
			p.vote_count, p.comment_count, p.created_at,
			%s AS rank,
			%s AS voted
		FROM community_posts p
		LEFT JOIN user_profiles up ON up.user_id = p.author_id
		WHERE %s
		ORDER BY %s
		LIMIT %s`,
		rankSelect, voted, strings.Join(where, "\n\t\t\tAND "), orderBy, args.add(req.Limit+1))

	rows, err := r.db.QueryContext(ctx, query, args.values...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query feed: %w", err)
	}
	defer closeRows(rows)

	var (
		feedPosts []*posts.FeedPost
		ranks     []float64
	)
	for rows.Next() {
		post, postRank, err := scanFeedPost(rows, req.ViewerID != "")
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan feed post: %w", err)
		}
		feedPosts = append(feedPosts, post)
		ranks = append(ranks, postRank)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating feed results: %w", err)
	}

	// Fetch limit+1: the extra row only signals another page
	var next *string
	if req.Limit > 0 && len(feedPosts) > req.Limit {
		feedPosts = feedPosts[:req.Limit]
		last := feedPosts[len(feedPosts)-1]
		encoded := r.encodeCursor(feedCursor{
			sort:      req.Sort,
			ref:       ref,
			rank:      ranks[req.Limit-1],
			votes:     last.VoteCount,
			createdAt: last.CreatedAt,
			id:        last.ID,
		})
		next = &encoded
	}
	return feedPosts, next, nil
}

// encodeCursor signs sort::ref::key::createdAt::id with HMAC-SHA256
func (r *feedRepoBase) encodeCursor(c feedCursor) string {
	var key string
	switch c.sort {
	case feeds.SortTop:
		key = strconv.Itoa(c.votes)
	case feeds.SortNew:
		key = "-"
	default:
		key = strconv.FormatFloat(c.rank, 'g', -1, 64)
	}

	payload := strings.Join([]string{
		c.sort,
		c.ref.UTC().Format(time.RFC3339Nano),
		key,
		c.createdAt.UTC().Format(time.RFC3339Nano),
		c.id,
	}, cursorDelimiter)

	signed := payload + cursorDelimiter + r.sign(payload)
	return base64.RawURLEncoding.EncodeToString([]byte(signed))
}

// decodeCursor verifies and parses a cursor. A cursor minted for another sort is rejected.
func (r *feedRepoBase) decodeCursor(cursor *string, sort string) (*feedCursor, error) {
	if cursor == nil || *cursor == "" {
		return nil, nil
	}
	if len(*cursor) > maxCursorLength {
		return nil, fmt.Errorf("cursor exceeds maximum length")
	}

	decoded, err := base64.RawURLEncoding.DecodeString(*cursor)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor encoding")
	}

	parts := strings.Split(string(decoded), cursorDelimiter)
	if len(parts) != 6 {
		return nil, fmt.Errorf("invalid cursor format")
	}

	payload := strings.Join(parts[:5], cursorDelimiter)
	if !hmac.Equal([]byte(parts[5]), []byte(r.sign(payload))) {
		return nil, fmt.Errorf("invalid cursor signature")
	}

	c := &feedCursor{sort: parts[0], id: parts[4]}
	if c.sort != sort {
		return nil, fmt.Errorf("cursor was issued for sort %q", c.sort)
	}
	if c.ref, err = time.Parse(time.RFC3339Nano, parts[1]); err != nil {
		return nil, fmt.Errorf("invalid cursor reference time")
	}
	if c.createdAt, err = time.Parse(time.RFC3339Nano, parts[3]); err != nil {
		return nil, fmt.Errorf("invalid cursor timestamp")
	}
	if _, err := uuid.Parse(c.id); err != nil {
		return nil, fmt.Errorf("invalid cursor id")
	}

	switch sort {
	case feeds.SortTop:
		if c.votes, err = strconv.Atoi(parts[2]); err != nil {
			return nil, fmt.Errorf("invalid cursor vote count")
		}
	case feeds.SortHot, feeds.SortRising:
		if c.rank, err = strconv.ParseFloat(parts[2], 64); err != nil {
			return nil, fmt.Errorf("invalid cursor rank")
		}
	}
	return c, nil
}

func (r *feedRepoBase) sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(r.cursorSecret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanFeedPost scans the column list shared by feed and single-post queries
func scanFeedPost(row rowScanner, withViewer bool) (*posts.FeedPost, float64, error) {
	var (
		post        posts.FeedPost
		author      posts.AuthorView
		avatarURL   sql.NullString
		communityID sql.NullString
		venueID     sql.NullString
		rank        sql.NullFloat64
		voted       bool
	)

	err := row.Scan(
		&post.ID, &author.ID, &author.DisplayName, &avatarURL,
		&communityID, &venueID, &post.Body, &post.PostType,
		&post.VoteCount, &post.CommentCount, &post.CreatedAt,
		&rank, &voted,
	)
	if err != nil {
		return nil, 0, err
	}

	author.AvatarURL = nullStringPtr(avatarURL)
	post.Author = &author
	post.CommunityID = nullStringPtr(communityID)
	post.VenueID = nullStringPtr(venueID)
	if withViewer {
		post.Viewer = &posts.ViewerState{Voted: voted}
	}

	return &post, rank.Float64, nil
}

// nullStringPtr converts sql.NullString to *string
func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
