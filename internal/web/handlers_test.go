package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"sync"
	"testing"
	"time"

	"Morsel/internal/api/client"
	"Morsel/internal/core/likes"
	"Morsel/internal/core/postview"
	"Morsel/internal/core/posts"
	"Morsel/internal/core/users"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCookieSecret = "0123456789abcdef0123456789abcdef"

// fakePostsAPI serves a fixed feed and records like requests
type fakePostsAPI struct {
	mu       sync.Mutex
	feed     []*posts.Post
	likedBy  map[string][]string
	counts   map[string]int
	changes  []likes.ChangeLikeRequest
	userErr  error
	countErr error
	hold     chan struct{} // when set, like requests wait for it to close
}

func (f *fakePostsAPI) GetLikeCount(ctx context.Context, postID, token string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.counts[postID], nil
}

func (f *fakePostsAPI) ChangeLike(ctx context.Context, req likes.ChangeLikeRequest, token string) error {
	f.mu.Lock()
	f.changes = append(f.changes, req)
	hold := f.hold
	f.mu.Unlock()

	likes.MarkSent(ctx)
	if hold != nil {
		<-hold
	}
	return nil
}

func (f *fakePostsAPI) GetUser(ctx context.Context, userID, token string) (*users.User, error) {
	if f.userErr != nil {
		return nil, f.userErr
	}
	return &users.User{ID: userID, Likes: f.likedBy[userID]}, nil
}

func (f *fakePostsAPI) ListPosts(ctx context.Context, req posts.ListPostsRequest, token string) (*posts.ListPostsResponse, error) {
	return &posts.ListPostsResponse{Posts: f.feed}, nil
}

func (f *fakePostsAPI) changeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.changes)
}

func newFakePost(id, author string, likes int) *posts.Post {
	location := "Café Central, Wien"
	p := &posts.Post{
		ID:           id,
		AuthorID:     author,
		Username:     author + "-name",
		Kind:         posts.KindByte,
		Description:  "post " + id,
		Location:     &location,
		Likes:        likes,
		CreationDate: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
	}
	p.Normalize()
	return p
}

type testServer struct {
	server   *httptest.Server
	api      *fakePostsAPI
	registry *Registry
	client   *http.Client
}

func newTestServer(t *testing.T, api *fakePostsAPI) *testServer {
	t.Helper()
	return newTestServerWithConfig(t, api, Config{})
}

func newTestServerWithConfig(t *testing.T, api *fakePostsAPI, cfg Config) *testServer {
	t.Helper()

	templates, err := NewTemplates()
	require.NoError(t, err)
	registry, err := NewRegistry(100, nil, nil)
	require.NoError(t, err)
	cookies, err := NewCookieSessions(testCookieSecret, false)
	require.NoError(t, err)

	handlers := NewHandlers(templates, registry, cookies, api, cfg)
	handlers.now = func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }

	r := chi.NewRouter()
	r.Get("/", handlers.FeedHandler)
	r.Post("/session", handlers.SessionHandler)
	r.Route("/views/{viewID}", func(r chi.Router) {
		r.Get("/", handlers.CardHandler)
		r.Delete("/", handlers.UnmountHandler)
		r.Post("/like", handlers.LikeHandler)
		r.Post("/refresh", handlers.RefreshHandler)
	})
	r.Get("/health", handlers.HealthHandler)

	server := httptest.NewServer(r)
	t.Cleanup(func() {
		server.Close()
		registry.Close()
	})

	return &testServer{
		server:   server,
		api:      api,
		registry: registry,
		client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// signIn posts the session form and returns the identity cookie
func (ts *testServer) signIn(t *testing.T, userID string) *http.Cookie {
	t.Helper()

	form := url.Values{"user_id": {userID}, "token": {"tok-" + userID}}
	resp, err := ts.client.PostForm(ts.server.URL+"/session", form)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	for _, c := range resp.Cookies() {
		if c.Name == sessionName {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func (ts *testServer) do(t *testing.T, method, path string, cookie *http.Cookie) (int, string) {
	t.Helper()

	req, err := http.NewRequest(method, ts.server.URL+path, nil)
	require.NoError(t, err)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := ts.client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode, readAll(t, resp)
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

var viewIDPattern = regexp.MustCompile(`data-view="([^"]+)"`)

func viewIDs(body string) []string {
	var ids []string
	for _, m := range viewIDPattern.FindAllStringSubmatch(body, -1) {
		ids = append(ids, m[1])
	}
	return ids
}

func TestFeedHandler_NoCookieShowsSessionPage(t *testing.T) {
	ts := newTestServer(t, &fakePostsAPI{})

	status, body := ts.do(t, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `action="/session"`)
	assert.Equal(t, 0, ts.registry.Len())
}

func TestSessionHandler_RequiresFields(t *testing.T) {
	ts := newTestServer(t, &fakePostsAPI{})

	resp, err := ts.client.PostForm(ts.server.URL+"/session", url.Values{"user_id": {"u1"}})
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, resp.Cookies())
}

func TestFeedHandler_MountsCardsWithoutSendingLikes(t *testing.T) {
	api := &fakePostsAPI{
		feed:    []*posts.Post{newFakePost("1", "u1", 4), newFakePost("2", "u2", 0)},
		likedBy: map[string][]string{"u1": {"posts/2"}},
		counts:  map[string]int{"1": 4, "2": 1},
	}
	ts := newTestServer(t, api)
	cookie := ts.signIn(t, "u1")

	status, body := ts.do(t, http.MethodGet, "/?platform=ios", cookie)

	require.Equal(t, http.StatusOK, status)
	ids := viewIDs(body)
	require.Len(t, ids, 2)
	assert.Equal(t, 2, ts.registry.Len())
	assert.Contains(t, body, `href="maps://0,0?q=Caf%C3%A9`)
	assert.Contains(t, body, `data-action="edit" data-post="1"`, "owner controls on the user's own post")
	assert.NotContains(t, body, `data-action="edit" data-post="2"`)

	// The seeded flag never produces a request
	for _, id := range ids {
		c, err := ts.registry.Get(id, "u1")
		require.NoError(t, err)
		c.Wait()
	}
	assert.Equal(t, 0, api.changeCount())

	// Liked state comes from the session
	_, card := ts.do(t, http.MethodGet, "/views/"+ids[1], cookie)
	assert.Contains(t, card, `aria-pressed="true"`)
	assert.Contains(t, card, ">1<")
}

func TestLikeHandler_TogglesAndSendsOnce(t *testing.T) {
	api := &fakePostsAPI{
		feed:   []*posts.Post{newFakePost("7", "u2", 3)},
		counts: map[string]int{"7": 3},
	}
	ts := newTestServer(t, api)
	cookie := ts.signIn(t, "u1")

	_, body := ts.do(t, http.MethodGet, "/", cookie)
	ids := viewIDs(body)
	require.Len(t, ids, 1)

	c, err := ts.registry.Get(ids[0], "u1")
	require.NoError(t, err)
	c.Wait()

	status, card := ts.do(t, http.MethodPost, "/views/"+ids[0]+"/like", cookie)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, card, `aria-pressed="true"`)
	c.Wait()

	require.Equal(t, 1, api.changeCount())
	assert.Equal(t, likes.ChangeLikeRequest{UserID: "u1", PostID: "7", Action: likes.ActionLike}, api.changes[0])

	_, card = ts.do(t, http.MethodGet, "/views/"+ids[0], cookie)
	assert.Contains(t, card, ">4<")
}

func TestLikeHandler_PendingUntilConfirmed(t *testing.T) {
	api := &fakePostsAPI{
		feed:   []*posts.Post{newFakePost("7", "u2", 3)},
		counts: map[string]int{"7": 3},
		hold:   make(chan struct{}),
	}
	ts := newTestServer(t, api)
	cookie := ts.signIn(t, "u1")

	_, body := ts.do(t, http.MethodGet, "/", cookie)
	ids := viewIDs(body)
	require.Len(t, ids, 1)
	c, err := ts.registry.Get(ids[0], "u1")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return !c.Card(time.Now()).Loading }, time.Second, time.Millisecond)

	_, card := ts.do(t, http.MethodPost, "/views/"+ids[0]+"/like", cookie)
	assert.Contains(t, card, `class="count pending"`)
	assert.Contains(t, card, ">3<", "count waits for the server")

	_, card = ts.do(t, http.MethodGet, "/views/"+ids[0], cookie)
	assert.Contains(t, card, `class="count pending"`)

	close(api.hold)
	c.Wait()

	_, card = ts.do(t, http.MethodGet, "/views/"+ids[0], cookie)
	assert.Contains(t, card, `class="count"`)
	assert.Contains(t, card, ">4<")
}

func TestCardHandler_FetchFailureShowsSentinel(t *testing.T) {
	api := &fakePostsAPI{
		feed:     []*posts.Post{newFakePost("7", "u2", 3)},
		countErr: fmt.Errorf("GetPost: %w", client.ErrUnexpectedResponse),
	}
	ts := newTestServer(t, api)
	cookie := ts.signIn(t, "u1")

	_, body := ts.do(t, http.MethodGet, "/", cookie)
	ids := viewIDs(body)
	require.Len(t, ids, 1)

	c, err := ts.registry.Get(ids[0], "u1")
	require.NoError(t, err)
	c.Wait()

	_, card := ts.do(t, http.MethodGet, "/views/"+ids[0], cookie)
	assert.Contains(t, card, ">-1<")

	// A refresh recovers once the API answers again
	api.mu.Lock()
	api.countErr = nil
	api.counts = map[string]int{"7": 9}
	api.mu.Unlock()

	status, _ := ts.do(t, http.MethodPost, "/views/"+ids[0]+"/refresh", cookie)
	require.Equal(t, http.StatusOK, status)
	c.Wait()

	_, card = ts.do(t, http.MethodGet, "/views/"+ids[0], cookie)
	assert.Contains(t, card, ">9<")
}

func TestUnmountHandler(t *testing.T) {
	api := &fakePostsAPI{feed: []*posts.Post{newFakePost("7", "u2", 0)}}
	ts := newTestServer(t, api)
	cookie := ts.signIn(t, "u1")
	other := ts.signIn(t, "u2")

	_, body := ts.do(t, http.MethodGet, "/", cookie)
	ids := viewIDs(body)
	require.Len(t, ids, 1)

	status, _ := ts.do(t, http.MethodDelete, "/views/"+ids[0], other)
	assert.Equal(t, http.StatusNotFound, status, "views are bound to the user that mounted them")

	status, _ = ts.do(t, http.MethodDelete, "/views/"+ids[0], cookie)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = ts.do(t, http.MethodPost, "/views/"+ids[0]+"/like", cookie)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, 0, api.changeCount())

	status, _ = ts.do(t, http.MethodDelete, "/views/"+ids[0], nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestFeedHandler_SessionErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "expired token", err: fmt.Errorf("GetUser: %w", client.ErrUnauthorized), wantStatus: http.StatusUnauthorized},
		{name: "unknown user", err: fmt.Errorf("GetUser: %w", client.ErrNotFound), wantStatus: http.StatusNotFound},
		{name: "api down", err: fmt.Errorf("GetUser: %w", client.ErrUnexpectedResponse), wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, &fakePostsAPI{userErr: tt.err})
			cookie := ts.signIn(t, "u1")

			status, _ := ts.do(t, http.MethodGet, "/", cookie)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, 0, ts.registry.Len())
		})
	}
}

func TestFeedHandler_CardOptions(t *testing.T) {
	post := newFakePost("7", "u2", 0)
	post.Description = "a very long description"
	ts := newTestServerWithConfig(t, &fakePostsAPI{feed: []*posts.Post{post}}, Config{
		PreviewLength: 6,
		CommentsBase:  "/app/bytes",
	})
	cookie := ts.signIn(t, "u1")

	_, body := ts.do(t, http.MethodGet, "/", cookie)
	assert.Contains(t, body, "a very…")
	assert.Contains(t, body, `data-href="/app/bytes/7/comments"`)
}

func TestHealthHandler(t *testing.T) {
	ts := newTestServer(t, &fakePostsAPI{})

	status, body := ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		target string
		ua     string
		want   postview.Platform
	}{
		{"/", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)", postview.PlatformIOS},
		{"/", "Mozilla/5.0 (Linux; Android 14)", postview.PlatformAndroid},
		{"/", "Mozilla/5.0 (X11; Linux x86_64)", postview.PlatformWeb},
		{"/?platform=android", "Mozilla/5.0 (iPhone)", postview.PlatformAndroid},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.target, nil)
		req.Header.Set("User-Agent", tt.ua)
		assert.Equal(t, tt.want, detectPlatform(req), tt.ua)
	}
}

func TestNewCookieSessions_ShortSecret(t *testing.T) {
	_, err := NewCookieSessions("short", false)
	assert.Error(t, err)
}
