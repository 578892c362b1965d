package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"Morsel/internal/core/posts"
	"Morsel/internal/core/users"

	"github.com/lib/pq"
)

type postgresUserRepo struct {
	db *sql.DB
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *sql.DB) users.UserRepository {
	return &postgresUserRepo{db: db}
}

// GetByID retrieves a user and the composite keys of the posts they like
func (r *postgresUserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	query := `
		SELECT u.id, u.username, u.created_at,
			COALESCE(array_agg(pl.post_id ORDER BY pl.created_at) FILTER (WHERE pl.post_id IS NOT NULL), '{}')
		FROM users u
		LEFT JOIN post_likes pl ON pl.user_id = u.id
		WHERE u.id = $1
		GROUP BY u.id`

	var (
		user    users.User
		postIDs pq.StringArray
	)
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&user.ID, &user.Username, &user.CreatedAt, &postIDs)
	if err == sql.ErrNoRows {
		return nil, users.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.Likes = make([]string, 0, len(postIDs))
	for _, postID := range postIDs {
		user.Likes = append(user.Likes, posts.Key(posts.Collection, postID))
	}

	return &user, nil
}

// AddLike inserts the like row and increments the post counter in one transaction.
// An existing like leaves the counter alone and reports changed=false.
func (r *postgresUserRepo) AddLike(ctx context.Context, userID, postID string) (bool, int, error) {
	return r.changeLike(ctx, userID, postID,
		`INSERT INTO post_likes (user_id, post_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		`UPDATE posts SET likes = likes + 1 WHERE id = $1 RETURNING likes`)
}

// RemoveLike deletes the like row and decrements the post counter in one transaction.
// A missing like leaves the counter alone and reports changed=false.
func (r *postgresUserRepo) RemoveLike(ctx context.Context, userID, postID string) (bool, int, error) {
	return r.changeLike(ctx, userID, postID,
		`DELETE FROM post_likes WHERE user_id = $1 AND post_id = $2`,
		`UPDATE posts SET likes = GREATEST(likes - 1, 0) WHERE id = $1 RETURNING likes`)
}

func (r *postgresUserRepo) changeLike(ctx context.Context, userID, postID, rowQuery, counterQuery string) (bool, int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && rollbackErr != sql.ErrTxDone {
			slog.Error("failed to rollback like transaction",
				"user_id", userID,
				"post_id", postID,
				"error", rollbackErr)
		}
	}()

	result, err := tx.ExecContext(ctx, rowQuery, userID, postID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return false, 0, fmt.Errorf("failed to change like: %w", foreignKeyError(pqErr))
		}
		return false, 0, fmt.Errorf("failed to change like row: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, 0, fmt.Errorf("failed to check like row result: %w", err)
	}

	var count int
	if affected == 0 {
		err = tx.QueryRowContext(ctx, `SELECT likes FROM posts WHERE id = $1`, postID).Scan(&count)
	} else {
		err = tx.QueryRowContext(ctx, counterQuery, postID).Scan(&count)
	}
	if err == sql.ErrNoRows {
		return false, 0, posts.ErrNotFound
	}
	if err != nil {
		return false, 0, fmt.Errorf("failed to update like counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("failed to commit like change: %w", err)
	}

	return affected > 0, count, nil
}

// foreignKeyError maps a post_likes foreign key violation to the missing entity
func foreignKeyError(err *pq.Error) error {
	switch err.Constraint {
	case "post_likes_post_id_fkey":
		return posts.ErrNotFound
	case "post_likes_user_id_fkey":
		return users.ErrUserNotFound
	default:
		return err
	}
}
