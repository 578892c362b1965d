package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"Morsel/internal/core/posts"

	"github.com/lib/pq"
)

type postgresPostRepo struct {
	db *sql.DB
}

// NewPostRepository creates a new PostgreSQL post repository
func NewPostRepository(db *sql.DB) posts.Repository {
	return &postgresPostRepo{db: db}
}

const postColumns = `
	p.id, p.author_id, u.username, p.kind, p.description, p.location,
	p.pictures, p.comments, p.ingredients, p.likes, p.created_at`

// GetByID retrieves a post by its id segment
func (r *postgresPostRepo) GetByID(ctx context.Context, id string) (*posts.Post, error) {
	query := `SELECT` + postColumns + `
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = $1`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, posts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return post, nil
}

// List retrieves a page of posts, newest first
func (r *postgresPostRepo) List(ctx context.Context, limit, offset int) ([]*posts.Post, error) {
	query := `SELECT` + postColumns + `
		FROM posts p
		JOIN users u ON u.id = p.author_id
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := []*posts.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		result = append(result, post)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	return result, nil
}

// Exists reports whether a post with the id exists
func (r *postgresPostRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check post existence: %w", err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*posts.Post, error) {
	var (
		post        posts.Post
		kind        string
		location    sql.NullString
		pictures    pq.StringArray
		comments    pq.StringArray
		ingredients pq.StringArray
	)

	err := row.Scan(
		&post.ID, &post.AuthorID, &post.Username, &kind, &post.Description, &location,
		&pictures, &comments, &ingredients, &post.Likes, &post.CreationDate,
	)
	if err != nil {
		return nil, err
	}

	post.Kind = posts.Kind(kind)
	if location.Valid {
		post.Location = &location.String
	}
	post.Pictures = pictures
	post.Comments = comments
	if ingredients != nil {
		post.Ingredients = ingredients
	}
	post.Normalize()

	return &post, nil
}
