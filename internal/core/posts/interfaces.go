package posts

import "context"

// Service defines the business logic interface for posts
// Serves the read side of the posts API; like writes go through users.Service
type Service interface {
	// GetPost returns a post with its authoritative like count.
	// The count is read through the counter cache when one is configured.
	GetPost(ctx context.Context, id string) (*Post, error)

	// ListPosts returns a feed page ordered by creation date, newest first
	ListPosts(ctx context.Context, req ListPostsRequest) (*ListPostsResponse, error)
}

// Repository defines the data access interface for posts
type Repository interface {
	// GetByID retrieves a post by its id segment
	// Returns ErrNotFound when no row matches
	GetByID(ctx context.Context, id string) (*Post, error)

	// List retrieves a page of posts, newest first
	List(ctx context.Context, limit, offset int) ([]*Post, error)

	// Exists reports whether a post with the id exists
	Exists(ctx context.Context, id string) (bool, error)
}

// CounterCache caches per-post like counters in front of the repository.
// Implementations must treat a miss as (0, false, nil).
type CounterCache interface {
	GetLikes(ctx context.Context, id string) (count int, ok bool, err error)

	// SetLikes stores a committed count, overwriting whatever is cached.
	// Writers call it with the count returned by the like transaction.
	SetLikes(ctx context.Context, id string, count int) error

	// SeedLikes stores a count read from the database only if no counter is cached yet,
	// so a reader holding an older row never overwrites a writer's committed count.
	SeedLikes(ctx context.Context, id string, count int) error

	Invalidate(ctx context.Context, id string) error
}
