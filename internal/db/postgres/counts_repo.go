package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// CountsReport lists how many rows each recount changed
type CountsReport struct {
	PostVotes        int64
	PostComments     int64
	CommunityMembers int64
	CommunityPosts   int64
}

// ReindexCounts recomputes every denormalized counter from its source table in one
// transaction. Only rows whose stored value drifted are rewritten.
func ReindexCounts(ctx context.Context, db *sql.DB) (*CountsReport, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	var report CountsReport
	steps := []struct {
		name  string
		query string
		dest  *int64
	}{
		{"post votes", `
			UPDATE community_posts p
			SET vote_count = c.n
			FROM (
				SELECT p2.id, COUNT(v.user_id) AS n
				FROM community_posts p2
				LEFT JOIN post_votes v ON v.post_id = p2.id
				GROUP BY p2.id
			) c
			WHERE c.id = p.id AND p.vote_count <> c.n`, &report.PostVotes},
		{"post comments", `
			UPDATE community_posts p
			SET comment_count = c.n
			FROM (
				SELECT p2.id, COUNT(pc.id) AS n
				FROM community_posts p2
				LEFT JOIN post_comments pc ON pc.post_id = p2.id
				GROUP BY p2.id
			) c
			WHERE c.id = p.id AND p.comment_count <> c.n`, &report.PostComments},
		{"community members", `
			UPDATE communities co
			SET member_count = c.n
			FROM (
				SELECT co2.id, COUNT(m.user_id) AS n
				FROM communities co2
				LEFT JOIN community_members m ON m.community_id = co2.id
				GROUP BY co2.id
			) c
			WHERE c.id = co.id AND co.member_count <> c.n`, &report.CommunityMembers},
		{"community posts", `
			UPDATE communities co
			SET post_count = c.n
			FROM (
				SELECT co2.id, COUNT(p.id) AS n
				FROM communities co2
				LEFT JOIN community_posts p ON p.community_id = co2.id AND p.deleted_at IS NULL
				GROUP BY co2.id
			) c
			WHERE c.id = co.id AND co.post_count <> c.n`, &report.CommunityPosts},
	}

	for _, step := range steps {
		result, err := tx.ExecContext(ctx, step.query)
		if err != nil {
			return nil, fmt.Errorf("failed to recount %s: %w", step.name, err)
		}
		if *step.dest, err = result.RowsAffected(); err != nil {
			return nil, fmt.Errorf("failed to read %s recount: %w", step.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit recount: %w", err)
	}
	return &report, nil
}
