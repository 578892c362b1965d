package users

import (
	"context"
	"errors"
	"testing"

	"Morsel/internal/core/likes"
	"Morsel/internal/core/posts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockUserRepository) AddLike(ctx context.Context, userID, postID string) (bool, int, error) {
	args := m.Called(ctx, userID, postID)
	return args.Bool(0), args.Int(1), args.Error(2)
}

func (m *MockUserRepository) RemoveLike(ctx context.Context, userID, postID string) (bool, int, error) {
	args := m.Called(ctx, userID, postID)
	return args.Bool(0), args.Int(1), args.Error(2)
}

// MockPostRepository is a mock implementation of posts.Repository
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) GetByID(ctx context.Context, id string) (*posts.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*posts.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, limit, offset int) ([]*posts.Post, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*posts.Post), args.Error(1)
}

func (m *MockPostRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockCounterCache is a mock implementation of posts.CounterCache
type MockCounterCache struct {
	mock.Mock
}

func (m *MockCounterCache) GetLikes(ctx context.Context, id string) (int, bool, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *MockCounterCache) SetLikes(ctx context.Context, id string, count int) error {
	return m.Called(ctx, id, count).Error(0)
}

func (m *MockCounterCache) SeedLikes(ctx context.Context, id string, count int) error {
	return m.Called(ctx, id, count).Error(0)
}

func (m *MockCounterCache) Invalidate(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestChangeLike_Like(t *testing.T) {
	userRepo := new(MockUserRepository)
	postRepo := new(MockPostRepository)
	cache := new(MockCounterCache)
	service := NewUserService(userRepo, postRepo, cache, nil)
	ctx := context.Background()

	postRepo.On("Exists", ctx, "42").Return(true, nil)
	userRepo.On("AddLike", ctx, "u1", "42").Return(true, 11, nil)
	cache.On("SetLikes", ctx, "42", 11).Return(nil)

	result, err := service.ChangeLike(ctx, "u1", "u1", likes.ActionLike, "42",
		likes.ChangeLikeRequest{UserID: "u1", PostID: "42"})

	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.Equal(t, 11, result.Likes)
	userRepo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestChangeLike_UnlikeIdempotent(t *testing.T) {
	userRepo := new(MockUserRepository)
	postRepo := new(MockPostRepository)
	cache := new(MockCounterCache)
	service := NewUserService(userRepo, postRepo, cache, nil)
	ctx := context.Background()

	postRepo.On("Exists", ctx, "42").Return(true, nil)
	userRepo.On("RemoveLike", ctx, "u1", "42").Return(false, 3, nil)

	result, err := service.ChangeLike(ctx, "u1", "u1", likes.ActionUnlike, "42", likes.ChangeLikeRequest{})

	require.NoError(t, err)
	assert.False(t, result.Changed)
	assert.Equal(t, 3, result.Likes)
	cache.AssertNotCalled(t, "SetLikes", mock.Anything, mock.Anything, mock.Anything)
}

func TestChangeLike_CacheFailureInvalidates(t *testing.T) {
	userRepo := new(MockUserRepository)
	postRepo := new(MockPostRepository)
	cache := new(MockCounterCache)
	service := NewUserService(userRepo, postRepo, cache, nil)
	ctx := context.Background()

	postRepo.On("Exists", ctx, "42").Return(true, nil)
	userRepo.On("RemoveLike", ctx, "u1", "42").Return(true, 2, nil)
	cache.On("SetLikes", ctx, "42", 2).Return(errors.New("redis down"))
	cache.On("Invalidate", ctx, "42").Return(nil)

	_, err := service.ChangeLike(ctx, "u1", "u1", likes.ActionUnlike, "42", likes.ChangeLikeRequest{})

	require.NoError(t, err, "cache failures do not fail the write")
	cache.AssertExpectations(t)
}

func TestChangeLike_Rejections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		actor   string
		action  likes.Action
		body    likes.ChangeLikeRequest
		exists  bool
		wantErr error
	}{
		{name: "invalid action", actor: "u1", action: "love", wantErr: likes.ErrInvalidAction},
		{name: "other user", actor: "u2", action: likes.ActionLike, wantErr: ErrForbidden},
		{name: "body user mismatch", actor: "u1", action: likes.ActionLike, body: likes.ChangeLikeRequest{UserID: "u9"}, wantErr: ErrBodyMismatch},
		{name: "body post mismatch", actor: "u1", action: likes.ActionLike, body: likes.ChangeLikeRequest{PostID: "7"}, wantErr: ErrBodyMismatch},
		{name: "missing post", actor: "u1", action: likes.ActionLike, exists: false, wantErr: posts.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := new(MockUserRepository)
			postRepo := new(MockPostRepository)
			postRepo.On("Exists", ctx, "42").Return(tt.exists, nil).Maybe()
			service := NewUserService(userRepo, postRepo, nil, nil)

			_, err := service.ChangeLike(ctx, tt.actor, "u1", tt.action, "42", tt.body)

			assert.ErrorIs(t, err, tt.wantErr)
			userRepo.AssertNotCalled(t, "AddLike", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestChangeLike_RepositoryError(t *testing.T) {
	userRepo := new(MockUserRepository)
	postRepo := new(MockPostRepository)
	service := NewUserService(userRepo, postRepo, nil, nil)
	ctx := context.Background()

	postRepo.On("Exists", ctx, "42").Return(true, nil)
	userRepo.On("AddLike", ctx, "u1", "42").Return(false, 0, errors.New("connection reset"))

	_, err := service.ChangeLike(ctx, "u1", "u1", likes.ActionLike, "42", likes.ChangeLikeRequest{})
	assert.Error(t, err)
}

func TestGetUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := NewUserService(userRepo, new(MockPostRepository), nil, nil)
	ctx := context.Background()

	userRepo.On("GetByID", ctx, "u1").Return(&User{ID: "u1", Likes: []string{"posts/1"}}, nil)
	userRepo.On("GetByID", ctx, "ghost").Return(nil, ErrUserNotFound)

	user, err := service.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"posts/1"}, user.Likes)

	_, err = service.GetUser(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = service.GetUser(ctx, "  ")
	assert.Error(t, err)
}
