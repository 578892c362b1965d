package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// RecountLikes recomputes every posts.likes counter from post_likes.
// Returns the ids of the posts whose stored counter was wrong.
func RecountLikes(ctx context.Context, db *sql.DB) ([]string, error) {
	query := `
		WITH actual AS (
			SELECT p.id, COUNT(pl.user_id)::int AS likes
			FROM posts p
			LEFT JOIN post_likes pl ON pl.post_id = p.id
			GROUP BY p.id
		)
		UPDATE posts
		SET likes = actual.likes
		FROM actual
		WHERE posts.id = actual.id AND posts.likes <> actual.likes
		RETURNING posts.id`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to recount likes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var fixed []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan recounted post: %w", err)
		}
		fixed = append(fixed, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recounted posts: %w", err)
	}

	return fixed, nil
}
