package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"Morsel/internal/core/likes"
	"Morsel/internal/core/posts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := New(server.URL+"/", WithHTTPClient(server.Client()))
	require.NoError(t, err)
	return c
}

func TestGetLikeCount(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/posts/42", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"42","key":"posts/42","likes":5}`))
	})

	count, err := c.GetLikeCount(context.Background(), "42", "tok")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestGetLikeCount_MissingField(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"42"}`))
	})

	_, err := c.GetLikeCount(context.Background(), "42", "tok")
	assert.ErrorIs(t, err, ErrUnexpectedResponse)
}

func TestChangeLike_WireFormat(t *testing.T) {
	tests := []struct {
		action   likes.Action
		wantPath string
	}{
		{action: likes.ActionLike, wantPath: "/api/users/u1/like/42"},
		{action: likes.ActionUnlike, wantPath: "/api/users/u1/unlike/42"},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPatch, r.Method)
				assert.Equal(t, tt.wantPath, r.URL.Path)
				assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				raw, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				var body map[string]string
				require.NoError(t, json.Unmarshal(raw, &body))
				assert.Equal(t, map[string]string{"user_id": "u1", "post_id": "42"}, body)

				// Body is ignored, even when it is not JSON
				_, _ = w.Write([]byte("ok"))
			})

			err := c.ChangeLike(context.Background(), likes.ChangeLikeRequest{
				UserID: "u1",
				PostID: "42",
				Action: tt.action,
			}, "tok")
			require.NoError(t, err)
		})
	}
}

func TestChangeLike_InvalidAction(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	err := c.ChangeLike(context.Background(), likes.ChangeLikeRequest{UserID: "u1", PostID: "42", Action: "love"}, "tok")
	assert.ErrorIs(t, err, likes.ErrInvalidAction)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		status  int
		want    error
		auth    bool
		envName string
	}{
		{status: http.StatusBadRequest, want: ErrBadRequest, envName: "InvalidAction"},
		{status: http.StatusUnauthorized, want: ErrUnauthorized, auth: true, envName: "AuthenticationRequired"},
		{status: http.StatusForbidden, want: ErrForbidden, auth: true, envName: "NotAuthorized"},
		{status: http.StatusNotFound, want: ErrNotFound, envName: "PostNotFound"},
		{status: http.StatusTooManyRequests, want: ErrRateLimited, envName: "RateLimitExceeded"},
		{status: http.StatusBadGateway, want: ErrUnexpectedResponse},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				if tt.envName != "" {
					_ = json.NewEncoder(w).Encode(map[string]string{"error": tt.envName, "message": "nope"})
				}
			})

			_, err := c.GetPost(context.Background(), "42", "tok")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.auth, IsAuthError(err))

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.envName, apiErr.Name)
		})
	}
}

func TestGetUserAndListPosts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/users/u1":
			_, _ = w.Write([]byte(`{"id":"u1","username":"alice","likes":["posts/1"]}`))
		case "/api/posts":
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			assert.Equal(t, "10", r.URL.Query().Get("offset"))
			_, _ = w.Write([]byte(`{"posts":[{"id":"1","type":"byte","likes":2}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	user, err := c.GetUser(ctx, "u1", "tok")
	require.NoError(t, err)
	assert.Equal(t, []string{"posts/1"}, user.Likes)

	resp, err := c.ListPosts(ctx, posts.ListPostsRequest{Limit: 5, Offset: 10}, "tok")
	require.NoError(t, err)
	require.Len(t, resp.Posts, 1)
	assert.Equal(t, "posts/1", resp.Posts[0].Key, "keys are filled when the API omits them")
	assert.Equal(t, posts.KindByte, resp.Posts[0].Kind)
}

func TestNew_RejectsBadURL(t *testing.T) {
	_, err := New("ftp://example.com")
	assert.Error(t, err)

	_, err = New("://bad")
	assert.Error(t, err)
}

type staticIdentity struct{}

func (staticIdentity) UserID() string                            { return "u1" }
func (staticIdentity) Token(ctx context.Context) (string, error) { return "tok", nil }
func (staticIdentity) HasLiked(postKey string) bool              { return false }

func TestChangeLike_ReleasesNextPressOnceWritten(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	var seen []string

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`{"id":"42","likes":3}`))
			return
		}
		mu.Lock()
		seen = append(seen, r.URL.Path)
		first := len(seen) == 1
		mu.Unlock()
		if first {
			<-release
		}
		w.WriteHeader(http.StatusOK)
	})

	inst, err := likes.Mount(context.Background(), likes.MountParams{
		Identity: staticIdentity{},
		Remote:   c,
		PostKey:  "posts/42",
	})
	require.NoError(t, err)
	inst.Wait()

	inst.Toggle()
	inst.Toggle()

	// The unlike goes out while the like's response is still held
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2
	}, 2*time.Second, 5*time.Millisecond)

	close(release)
	inst.Wait()
	assert.Equal(t, 0, inst.InFlight())
	assert.Equal(t, 3, inst.LocalCount())
}
