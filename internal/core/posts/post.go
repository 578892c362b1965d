package posts

import (
	"strings"
	"time"
)

const (
	// Collection is the key prefix of every post ("posts/<id>")
	Collection = "posts"

	// UserCollection is the key prefix of post authors ("users/<id>")
	UserCollection = "users"
)

// Kind distinguishes the two post shapes the app publishes
type Kind string

const (
	KindByte   Kind = "byte"
	KindRecipe Kind = "recipe"
)

// Post represents a post as served by the posts API
// Bytes carry a location, recipes carry ingredients; both share the rest
type Post struct {
	CreationDate time.Time `json:"creation_date" db:"created_at"`
	Location     *string   `json:"location,omitempty" db:"location"`
	Key          string    `json:"key" db:"-"`
	ID           string    `json:"id" db:"id"`
	Kind         Kind      `json:"type" db:"kind"`
	Author       string    `json:"author" db:"-"`
	AuthorID     string    `json:"-" db:"author_id"`
	Username     string    `json:"username" db:"username"`
	Description  string    `json:"description" db:"description"`
	Pictures     []string  `json:"pictures" db:"pictures"`
	Comments     []string  `json:"comments" db:"comments"`
	Ingredients  []string  `json:"ingredients,omitempty" db:"ingredients"`
	Likes        int       `json:"likes" db:"likes"`
}

// IsByte reports whether the post is a byte (short food post)
func (p *Post) IsByte() bool {
	return p.Kind == KindByte
}

// IsRecipe reports whether the post is a recipe
func (p *Post) IsRecipe() bool {
	return p.Kind == KindRecipe
}

// CanonicalID returns the id segment of the post key
func (p *Post) CanonicalID() (string, error) {
	_, id, err := SplitKey(p.Key)
	return id, err
}

// IsOwnedBy reports whether userID authored the post.
// The author is stored as a composite key, so only its id segment is compared.
func (p *Post) IsOwnedBy(userID string) bool {
	if userID == "" {
		return false
	}
	_, authorID, err := SplitKey(p.Author)
	if err != nil {
		return false
	}
	return authorID == userID
}

// HasLocation reports whether a byte carries a location worth linking to maps
func (p *Post) HasLocation() bool {
	return p.IsByte() && p.Location != nil && strings.TrimSpace(*p.Location) != ""
}

// Normalize fills the composite keys from the stored ids.
// Repositories call this after scanning a row.
func (p *Post) Normalize() {
	if p.Key == "" && p.ID != "" {
		p.Key = Key(Collection, p.ID)
	}
	if p.Author == "" && p.AuthorID != "" {
		p.Author = Key(UserCollection, p.AuthorID)
	}
	if p.Pictures == nil {
		p.Pictures = []string{}
	}
	if p.Comments == nil {
		p.Comments = []string{}
	}
}

// Key joins a collection and an id into a composite key
func Key(collection, id string) string {
	return collection + "/" + id
}

// SplitKey splits a composite "<collection>/<id>" key.
// The id is the second path segment; anything after it is ignored.
func SplitKey(key string) (collection, id string, err error) {
	parts := strings.Split(key, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ErrInvalidKey
	}
	return parts[0], parts[1], nil
}

// ListPostsRequest holds feed pagination parameters
type ListPostsRequest struct {
	Limit  int
	Offset int
}

// ListPostsResponse is the feed page returned by GET /api/posts
type ListPostsResponse struct {
	Posts []*Post `json:"posts"`
}
