package server

import (
	"context"
	"testing"
	"time"

	"inkpost/internal/auth"
	"inkpost/internal/config"
	"inkpost/internal/models"
	"inkpost/internal/notifications"
	"inkpost/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-test-secret-with-enough-entropy-123"

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) ApplyLike(ctx context.Context, postID, userID string, liked bool) (int, error) {
	args := m.Called(ctx, postID, userID, liked)
	return args.Int(0), args.Error(1)
}

func (m *MockPostRepository) AppendComment(ctx context.Context, postID string, comment models.Comment) error {
	args := m.Called(ctx, postID, comment)
	return args.Error(0)
}

func (m *MockPostRepository) RemoveComment(ctx context.Context, postID, commentID string) error {
	args := m.Called(ctx, postID, commentID)
	return args.Error(0)
}

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// newTestServer wires a Server around mock repositories. redisClient may be nil.
func newTestServer(t *testing.T, postRepo *MockPostRepository, userRepo *MockUserRepository, redisClient *redis.Client) (*Server, *fiber.App) {
	t.Helper()
	cfg := &config.Config{Env: "test", JWTSecret: testSecret, JWTTTLHours: 1}

	s := &Server{
		config:   cfg,
		redis:    redisClient,
		postRepo: postRepo,
		userRepo: userRepo,
		tokens:   auth.NewTokenManager(testSecret, time.Hour),
		denylist: auth.NewDenylist(redisClient),
		hub:      notifications.NewHub(),
	}
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
	}
	s.postService = service.NewPostService(postRepo, userRepo)
	s.commentService = service.NewCommentService(postRepo, userRepo)
	s.userService = service.NewUserService(userRepo)
	s.authService = service.NewAuthService(userRepo, s.tokens, s.denylist)

	return s, s.App()
}

// bearer returns an Authorization header value for a user with the given role.
func bearer(t *testing.T, s *Server, userID string, role models.Role) string {
	t.Helper()
	token, err := s.tokens.Issue(&models.User{ID: userID, Username: "user-" + userID, Role: role})
	require.NoError(t, err)
	return "Bearer " + token
}
