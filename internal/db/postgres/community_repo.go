package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"Regatta/internal/core/communities"
)

type postgresCommunityRepo struct {
	db *sql.DB
}

// NewCommunityRepository creates a new PostgreSQL community repository
func NewCommunityRepository(db *sql.DB) communities.Repository {
	return &postgresCommunityRepo{db: db}
}

// communityColumns selects a community and whether the viewer ($1) is a member.
// A NULL viewer compares as unknown, so anonymous reads get is_member = false.
const communityColumns = `
	c.id, c.slug, c.name, c.type, COALESCE(c.description, ''),
	c.member_count, c.post_count, c.created_at,
	EXISTS (
		SELECT 1 FROM community_members m
		WHERE m.community_id = c.id AND m.user_id = $1::uuid
	) AS is_member`

// GetByID retrieves a community by id with the viewer's membership
func (r *postgresCommunityRepo) GetByID(ctx context.Context, id, viewerID string) (*communities.Community, error) {
	query := `SELECT ` + communityColumns + ` FROM communities c WHERE c.id = $2`
	return r.getOne(ctx, query, viewerID, id)
}

// GetBySlug retrieves a community by its slug with the viewer's membership
func (r *postgresCommunityRepo) GetBySlug(ctx context.Context, slug, viewerID string) (*communities.Community, error) {
	query := `SELECT ` + communityColumns + ` FROM communities c WHERE c.slug = $2`
	return r.getOne(ctx, query, viewerID, slug)
}

func (r *postgresCommunityRepo) getOne(ctx context.Context, query, viewerID, key string) (*communities.Community, error) {
	community, err := scanCommunity(r.db.QueryRowContext(ctx, query, nullableUUID(viewerID), key))
	if err == sql.ErrNoRows {
		return nil, communities.ErrCommunityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get community: %w", err)
	}
	return community, nil
}

// List returns communities ordered by size, optionally only those the viewer joined
func (r *postgresCommunityRepo) List(ctx context.Context, req communities.ListCommunitiesRequest) ([]*communities.Community, error) {
	args := &queryArgs{}
	args.add(nullableUUID(req.ViewerID))

	var where []string
	if req.Type != "" {
		where = append(where, "c.type = "+args.add(req.Type))
	}
	if req.JoinedOnly {
		where = append(where, `EXISTS (
			SELECT 1 FROM community_members jm
			WHERE jm.community_id = c.id AND jm.user_id = $1::uuid)`)
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM communities c
		%s
		ORDER BY c.member_count DESC, c.name ASC, c.id ASC
		LIMIT %s OFFSET %s`,
		communityColumns, whereClause, args.add(req.Limit), args.add(req.Offset))

	rows, err := r.db.QueryContext(ctx, query, args.values...)
	if err != nil {
		return nil, fmt.Errorf("failed to list communities: %w", err)
	}
	defer closeRows(rows)

	result := []*communities.Community{}
	for rows.Next() {
		community, err := scanCommunity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan community: %w", err)
		}
		result = append(result, community)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating communities: %w", err)
	}
	return result, nil
}

func scanCommunity(row rowScanner) (*communities.Community, error) {
	var c communities.Community
	err := row.Scan(
		&c.ID, &c.Slug, &c.Name, &c.Type, &c.Description,
		&c.MemberCount, &c.PostCount, &c.CreatedAt,
		&c.IsMember,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// nullableUUID maps an empty id to NULL so "$n::uuid" never fails to parse
func nullableUUID(id string) sql.NullString {
	return sql.NullString{String: id, Valid: id != ""}
}
