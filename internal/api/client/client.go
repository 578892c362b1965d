// Package client talks to the posts API on behalf of rendered cards.
// It implements the remote side of the like synchronizer and the session loader.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strconv"
	"strings"
	"time"

	"Morsel/internal/core/identity"
	"Morsel/internal/core/likes"
	"Morsel/internal/core/posts"
	"Morsel/internal/core/users"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultTimeout bounds a whole call when the caller's context carries no deadline
const DefaultTimeout = 15 * time.Second

// maxErrorBody caps how much of an error response is read
const maxErrorBody = 16 << 10

// Client is a posts API client
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	userAgent  string
}

// Ensure Client serves the interfaces it exists for.
var (
	_ likes.Remote         = (*Client)(nil)
	_ identity.UserFetcher = (*Client)(nil)
)

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default traced HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header of every request
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for the posts API at baseURL.
// The default transport is wrapped with otelhttp so calls show up as spans.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse posts API URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("posts API URL must be http(s), got %q", baseURL)
	}

	c := &Client{
		baseURL: u,
		httpClient: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		userAgent: "morsel-web",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetPost fetches one post
// GET /api/posts/{postId}
func (c *Client) GetPost(ctx context.Context, postID, token string) (*posts.Post, error) {
	var post posts.Post
	if err := c.do(ctx, http.MethodGet, "/api/posts/"+url.PathEscape(postID), nil, token, &post, "get post"); err != nil {
		return nil, err
	}
	post.Normalize()
	return &post, nil
}

// GetLikeCount reads the authoritative like count of a post
func (c *Client) GetLikeCount(ctx context.Context, postID, token string) (int, error) {
	var body struct {
		Likes *int `json:"likes"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/posts/"+url.PathEscape(postID), nil, token, &body, "get like count"); err != nil {
		return 0, err
	}
	if body.Likes == nil {
		return 0, fmt.Errorf("get like count: %w: response has no likes field", ErrUnexpectedResponse)
	}
	return *body.Likes, nil
}

// ListPosts fetches a feed page
// GET /api/posts?limit=&offset=
func (c *Client) ListPosts(ctx context.Context, req posts.ListPostsRequest, token string) (*posts.ListPostsResponse, error) {
	query := url.Values{}
	if req.Limit > 0 {
		query.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Offset > 0 {
		query.Set("offset", strconv.Itoa(req.Offset))
	}

	path := "/api/posts"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var resp posts.ListPostsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, token, &resp, "list posts"); err != nil {
		return nil, err
	}
	for _, post := range resp.Posts {
		post.Normalize()
	}
	return &resp, nil
}

// GetUser fetches a user and the keys of the posts they like
// GET /api/users/{userId}
func (c *Client) GetUser(ctx context.Context, userID, token string) (*users.User, error) {
	var user users.User
	if err := c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(userID), nil, token, &user, "get user"); err != nil {
		return nil, err
	}
	if user.Likes == nil {
		user.Likes = []string{}
	}
	return &user, nil
}

// ChangeLike likes or unlikes a post. The response body is ignored.
// PATCH /api/users/{userId}/{action}/{postId}
func (c *Client) ChangeLike(ctx context.Context, req likes.ChangeLikeRequest, token string) error {
	if _, err := likes.ParseAction(string(req.Action)); err != nil {
		return err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode like request: %w", err)
	}

	// Release the instance's next request once this one is on the wire
	sentCtx := ctx
	ctx = httptrace.WithClientTrace(ctx, &httptrace.ClientTrace{
		WroteRequest: func(httptrace.WroteRequestInfo) { likes.MarkSent(sentCtx) },
	})

	path := "/api/users/" + url.PathEscape(req.UserID) + "/" + string(req.Action) + "/" + url.PathEscape(req.PostID)
	return c.do(ctx, http.MethodPatch, path, body, token, nil, string(req.Action)+" post")
}

// do performs one request. out may be nil, in which case the body is discarded.
func (c *Client) do(ctx context.Context, method, path string, body []byte, token string, out any, operation string) error {
	endpoint := c.baseURL.String() + path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s failed: %w", operation, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		_ = json.Unmarshal(raw, apiErr)
		return wrapStatus(apiErr, operation)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: %w: %w", operation, ErrUnexpectedResponse, err)
	}
	return nil
}
