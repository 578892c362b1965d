// Package postview composes a post's like state with the presentation data of its card.
package postview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"Morsel/internal/core/identity"
	"Morsel/internal/core/likes"
	"Morsel/internal/core/posts"

	"github.com/google/uuid"
)

// DefaultPreviewGraphemes is the description length shown on a card before truncation
const DefaultPreviewGraphemes = 280

// ErrNoSession is returned when mounting without an acting user
var ErrNoSession = errors.New("postview: session is required")

type options struct {
	observer       likes.Observer
	logger         *slog.Logger
	requestTimeout time.Duration
	platform       Platform
	previewLen     int
	commentsBase   string
}

// Option configures a mounted controller
type Option func(*options)

// WithObserver reports synchronizer events, typically to metrics
func WithObserver(o likes.Observer) Option {
	return func(opts *options) { opts.observer = o }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(opts *options) { opts.logger = l }
}

// WithRequestTimeout bounds each remote call of the instance
func WithRequestTimeout(d time.Duration) Option {
	return func(opts *options) { opts.requestTimeout = d }
}

// WithPlatform selects the maps link flavour
func WithPlatform(p Platform) Option {
	return func(opts *options) { opts.platform = p }
}

// WithPreviewLength sets the description preview length in grapheme clusters. 0 disables truncation.
func WithPreviewLength(n int) Option {
	return func(opts *options) { opts.previewLen = n }
}

// WithCommentsBase sets the path prefix of comment links ("/posts" gives "/posts/<id>/comments")
func WithCommentsBase(base string) Option {
	return func(opts *options) { opts.commentsBase = base }
}

// Controller owns the like instance of one rendered post
type Controller struct {
	id       string
	post     *posts.Post
	session  *identity.Session
	instance *likes.Instance
	opts     options
}

// Mount renders a post for the session user and starts its authoritative count read
func Mount(ctx context.Context, post *posts.Post, session *identity.Session, remote likes.Remote, opts ...Option) (*Controller, error) {
	if post == nil {
		return nil, fmt.Errorf("postview: post is required")
	}
	if session == nil {
		return nil, ErrNoSession
	}

	o := options{
		platform:     PlatformWeb,
		previewLen:   DefaultPreviewGraphemes,
		commentsBase: "/posts",
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	id := uuid.NewString()
	instance, err := likes.Mount(ctx, likes.MountParams{
		Identity:       session,
		Remote:         remote,
		Observer:       o.observer,
		Logger:         o.logger.With("view_id", id),
		PostKey:        post.Key,
		InitialCount:   post.Likes,
		RequestTimeout: o.requestTimeout,
	})
	if err != nil {
		return nil, err
	}

	return &Controller{
		id:       id,
		post:     post,
		session:  session,
		instance: instance,
		opts:     o,
	}, nil
}

// ID returns the view id assigned at mount
func (c *Controller) ID() string {
	return c.id
}

// Post returns the post the controller was mounted with
func (c *Controller) Post() *posts.Post {
	return c.post
}

// ToggleLike is the like button's action. It returns the new flag.
func (c *Controller) ToggleLike() bool {
	return c.instance.Toggle()
}

// Invalidate re-reads the authoritative count
func (c *Controller) Invalidate(ctx context.Context) {
	c.instance.Invalidate(ctx)
}

// Unmount ends the card's lifetime; in-flight requests still settle
func (c *Controller) Unmount() {
	c.instance.Unmount()
}

// Wait blocks until every request and read issued so far has settled
func (c *Controller) Wait() {
	c.instance.Wait()
}

// Snapshot exposes the raw like state
func (c *Controller) Snapshot() likes.Snapshot {
	return c.instance.Snapshot()
}

// Card builds the view model at time now
func (c *Controller) Card(now time.Time) CardView {
	snap := c.instance.Snapshot()
	postID := c.instance.PostID()
	description, truncated := preview(c.post.Description, c.opts.previewLen)

	card := CardView{
		ViewID:        c.id,
		PostID:        postID,
		PostKey:       c.instance.PostKey(),
		Kind:          string(c.post.Kind),
		Username:      c.post.Username,
		Description:   description,
		Truncated:     truncated,
		Pictures:      c.post.Pictures,
		Liked:         snap.Liked,
		CountText:     snap.CountText(),
		Loading:       snap.FetchState == likes.FetchPending,
		Pending:       snap.InFlight > 0,
		CountFailed:   snap.FetchState == likes.FetchFailed,
		RelativeAge:   relativeAge(c.post.CreationDate, now),
		OwnerControls: c.post.IsOwnedBy(c.session.UserID()),
		CommentsLink:  c.opts.commentsBase + "/" + postID + "/comments",
		CommentCount:  len(c.post.Comments),
	}
	if c.post.IsRecipe() {
		card.Ingredients = c.post.Ingredients
	}
	if c.post.HasLocation() {
		card.MapsLink = mapsLink(c.opts.platform, *c.post.Location)
	}
	return card
}
