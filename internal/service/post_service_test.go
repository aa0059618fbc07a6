package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"inkpost/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, string) (*models.Post, error)
	listFn          func(context.Context, int, int) ([]*models.Post, error)
	countFn         func(context.Context) (int64, error)
	updateFn        func(context.Context, *models.Post) error
	deleteFn        func(context.Context, string) error
	applyLikeFn     func(context.Context, string, string, bool) (int, error)
	appendCommentFn func(context.Context, string, models.Comment) error
	removeCommentFn func(context.Context, string, string) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id string) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *postRepoStub) Count(ctx context.Context) (int64, error) {
	return s.countFn(ctx)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) ApplyLike(ctx context.Context, postID, userID string, liked bool) (int, error) {
	return s.applyLikeFn(ctx, postID, userID, liked)
}
func (s *postRepoStub) AppendComment(ctx context.Context, postID string, comment models.Comment) error {
	return s.appendCommentFn(ctx, postID, comment)
}
func (s *postRepoStub) RemoveComment(ctx context.Context, postID, commentID string) error {
	return s.removeCommentFn(ctx, postID, commentID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:        func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:       func(_ context.Context, _ string) (*models.Post, error) { return &models.Post{}, nil },
		listFn:          func(_ context.Context, _, _ int) ([]*models.Post, error) { return nil, nil },
		countFn:         func(_ context.Context) (int64, error) { return 0, nil },
		updateFn:        func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:        func(_ context.Context, _ string) error { return nil },
		applyLikeFn:     func(_ context.Context, _, _ string, _ bool) (int, error) { return 0, nil },
		appendCommentFn: func(_ context.Context, _ string, _ models.Comment) error { return nil },
		removeCommentFn: func(_ context.Context, _, _ string) error { return nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, string) (*models.User, error)
	getByIDsFn      func(context.Context, []string) (map[string]*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	return s.getByIDsFn(ctx, ids)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, _ string) (*models.User, error) { return &models.User{}, nil },
		getByIDsFn: func(_ context.Context, _ []string) (map[string]*models.User, error) {
			return map[string]*models.User{}, nil
		},
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		updateFn:        func(_ context.Context, _ *models.User) error { return nil },
	}
}

// memPostRepo is an in-memory PostRepository that mirrors the store's
// field-level like and comment updates.
type memPostRepo struct {
	mu    sync.Mutex
	posts map[string]*models.Post
}

func newMemPostRepo(posts ...*models.Post) *memPostRepo {
	r := &memPostRepo{posts: make(map[string]*models.Post)}
	for _, p := range posts {
		r.posts[p.ID] = p
	}
	return r
}

func clonePost(p *models.Post) *models.Post {
	c := *p
	c.Tags = slices.Clone(p.Tags)
	c.Likes = slices.Clone(p.Likes)
	c.Comments = slices.Clone(p.Comments)
	return &c
}

func (r *memPostRepo) Create(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	r.posts[post.ID] = clonePost(post)
	return nil
}

func (r *memPostRepo) GetByID(_ context.Context, id string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, models.NewNotFoundError("Post")
	}
	return clonePost(p), nil
}

func (r *memPostRepo) List(_ context.Context, limit, offset int) ([]*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		all = append(all, clonePost(p))
	}
	slices.SortFunc(all, func(a, b *models.Post) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	return all[offset:min(offset+limit, len(all))], nil
}

func (r *memPostRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.posts)), nil
}

func (r *memPostRepo) Update(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[post.ID]
	if !ok {
		return models.NewNotFoundError("Post")
	}
	p.Title, p.Content, p.Tags = post.Title, post.Content, slices.Clone(post.Tags)
	return nil
}

func (r *memPostRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return models.NewNotFoundError("Post")
	}
	delete(r.posts, id)
	return nil
}

func (r *memPostRepo) ApplyLike(_ context.Context, postID, userID string, liked bool) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return 0, models.NewNotFoundError("Post")
	}
	has := p.Likes.Has(userID)
	if liked && !has {
		p.Likes = append(p.Likes, userID)
	}
	if !liked && has {
		p.Likes, _ = models.ToggleLike(p.Likes, userID)
	}
	return len(p.Likes), nil
}

func (r *memPostRepo) AppendComment(_ context.Context, postID string, comment models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return models.NewNotFoundError("Post")
	}
	p.AppendComment(comment)
	return nil
}

func (r *memPostRepo) RemoveComment(_ context.Context, postID, commentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return models.NewNotFoundError("Post")
	}
	if !p.RemoveComment(commentID) {
		return models.NewNotFoundError("Comment")
	}
	return nil
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func member(id string) models.Actor {
	return models.Actor{ID: id, Role: models.RoleMember}
}

func TestNormalizePage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		page, limit       int
		wantPage, wantLim int
	}{
		{"defaults", 0, 0, 1, 10},
		{"negative", -3, -1, 1, 10},
		{"limit capped", 2, 1000, 2, 50},
		{"in range", 3, 25, 3, 25},
		{"limit at cap", 1, 50, 1, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			page, limit := NormalizePage(tt.page, tt.limit)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLim, limit)
		})
	}
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	t.Parallel()

	svc := NewPostService(noopPostRepo(), noopUserRepo())
	ctx := context.Background()

	t.Run("missing title", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreatePost(ctx, CreatePostInput{Actor: member("u1"), Content: "body"})
		assertValidationError(t, err)
	})

	t.Run("whitespace title", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreatePost(ctx, CreatePostInput{Actor: member("u1"), Title: "   ", Content: "body"})
		assertValidationError(t, err)
	})

	t.Run("missing content", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreatePost(ctx, CreatePostInput{Actor: member("u1"), Title: "t"})
		assertValidationError(t, err)
	})

	t.Run("title too long", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreatePost(ctx, CreatePostInput{Actor: member("u1"), Title: strings.Repeat("a", 301), Content: "b"})
		assertValidationError(t, err)
	})

	t.Run("too many tags", func(t *testing.T) {
		t.Parallel()
		tags := make([]string, 21)
		for i := range tags {
			tags[i] = "tag"
		}
		_, err := svc.CreatePost(ctx, CreatePostInput{Actor: member("u1"), Title: "t", Content: "b", Tags: tags})
		assertValidationError(t, err)
	})
}

func TestPostService_CreatePost_Success(t *testing.T) {
	t.Parallel()

	var stored *models.Post
	repo := noopPostRepo()
	repo.createFn = func(_ context.Context, p *models.Post) error {
		p.ID = "p1"
		stored = p
		return nil
	}
	users := noopUserRepo()
	users.getByIDsFn = func(_ context.Context, ids []string) (map[string]*models.User, error) {
		assert.Equal(t, []string{"u1"}, ids)
		return map[string]*models.User{"u1": {ID: "u1", Username: "alice", Email: "a@x.io"}}, nil
	}

	svc := NewPostService(repo, users)
	view, err := svc.CreatePost(context.Background(), CreatePostInput{
		Actor:   member("u1"),
		Title:   "  Hello  ",
		Content: "World",
		Tags:    []string{" go ", "", "blog"},
	})
	require.NoError(t, err)

	require.NotNil(t, stored)
	assert.Equal(t, "Hello", stored.Title)
	assert.Equal(t, "u1", stored.AuthorID)
	assert.Equal(t, []string{"go", "blog"}, stored.Tags)
	assert.Equal(t, "p1", view.ID)
	require.NotNil(t, view.Author)
	assert.Equal(t, "alice", view.Author.Username)
	assert.Empty(t, view.Likes)
	assert.Empty(t, view.Comments)
}

func TestPostService_ListPosts_Pagination(t *testing.T) {
	t.Parallel()

	var gotLimit, gotOffset int
	repo := noopPostRepo()
	repo.countFn = func(_ context.Context) (int64, error) { return 120, nil }
	repo.listFn = func(_ context.Context, limit, offset int) ([]*models.Post, error) {
		gotLimit, gotOffset = limit, offset
		return []*models.Post{{ID: "p1", AuthorID: "u1"}, {ID: "p2", AuthorID: "u2"}}, nil
	}
	lookups := 0
	users := noopUserRepo()
	users.getByIDsFn = func(_ context.Context, ids []string) (map[string]*models.User, error) {
		lookups++
		assert.ElementsMatch(t, []string{"u1", "u2"}, ids)
		return map[string]*models.User{}, nil
	}

	svc := NewPostService(repo, users)
	page, err := svc.ListPosts(context.Background(), ListPostsInput{Page: 0, Limit: 1000})
	require.NoError(t, err)

	assert.Equal(t, 50, gotLimit)
	assert.Equal(t, 0, gotOffset)
	assert.Equal(t, int64(120), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 50, page.Limit)
	assert.Len(t, page.Posts, 2)
	assert.Equal(t, 1, lookups)

	_, err = svc.ListPosts(context.Background(), ListPostsInput{Page: 3, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, 20, gotLimit)
	assert.Equal(t, 40, gotOffset)
}

func TestPostService_GetPost_NotFound(t *testing.T) {
	t.Parallel()

	svc := NewPostService(newMemPostRepo(), noopUserRepo())
	_, err := svc.GetPost(context.Background(), "missing")
	assertCode(t, err, models.CodeNotFound)
}

func TestPostService_UpdatePost(t *testing.T) {
	t.Parallel()

	newPost := func() *models.Post {
		return &models.Post{ID: "p1", AuthorID: "u1", Title: "Original", Content: "Body", Tags: []string{"a"}}
	}
	ptr := func(s string) *string { return &s }

	t.Run("non-owner is forbidden and post is unchanged", func(t *testing.T) {
		t.Parallel()
		repo := newMemPostRepo(newPost())
		svc := NewPostService(repo, noopUserRepo())

		_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
			Actor: member("u2"), PostID: "p1", Title: ptr("Hijacked"),
		})
		assertCode(t, err, models.CodeForbidden)

		p, err := repo.GetByID(context.Background(), "p1")
		require.NoError(t, err)
		assert.Equal(t, "Original", p.Title)
	})

	t.Run("admin is not an owner", func(t *testing.T) {
		t.Parallel()
		svc := NewPostService(newMemPostRepo(newPost()), noopUserRepo())
		_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
			Actor: models.Actor{ID: "root", Role: models.RoleAdmin}, PostID: "p1", Title: ptr("x"),
		})
		assertCode(t, err, models.CodeForbidden)
	})

	t.Run("omitted fields are untouched", func(t *testing.T) {
		t.Parallel()
		repo := newMemPostRepo(newPost())
		svc := NewPostService(repo, noopUserRepo())

		view, err := svc.UpdatePost(context.Background(), UpdatePostInput{
			Actor: member("u1"), PostID: "p1", Content: ptr("New body"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Original", view.Title)
		assert.Equal(t, "New body", view.Content)
		assert.Equal(t, []string{"a"}, view.Tags)
	})

	t.Run("present empty title is rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewPostService(newMemPostRepo(newPost()), noopUserRepo())
		_, err := svc.UpdatePost(context.Background(), UpdatePostInput{
			Actor: member("u1"), PostID: "p1", Title: ptr("  "),
		})
		assertValidationError(t, err)
	})

	t.Run("present empty tags clear them", func(t *testing.T) {
		t.Parallel()
		svc := NewPostService(newMemPostRepo(newPost()), noopUserRepo())
		empty := []string{}
		view, err := svc.UpdatePost(context.Background(), UpdatePostInput{
			Actor: member("u1"), PostID: "p1", Tags: &empty,
		})
		require.NoError(t, err)
		assert.Empty(t, view.Tags)
	})

	t.Run("missing post", func(t *testing.T) {
		t.Parallel()
		svc := NewPostService(newMemPostRepo(), noopUserRepo())
		_, err := svc.UpdatePost(context.Background(), UpdatePostInput{Actor: member("u1"), PostID: "nope"})
		assertCode(t, err, models.CodeNotFound)
	})
}

func TestPostService_DeletePost(t *testing.T) {
	t.Parallel()

	repo := newMemPostRepo(&models.Post{ID: "p1", AuthorID: "u1", Title: "t", Content: "c"})
	svc := NewPostService(repo, noopUserRepo())
	ctx := context.Background()

	_, err := svc.DeletePost(ctx, DeletePostInput{Actor: member("u2"), PostID: "p1"})
	assertCode(t, err, models.CodeForbidden)

	deleted, err := svc.DeletePost(ctx, DeletePostInput{Actor: member("u1"), PostID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, "p1", deleted.ID)

	_, err = repo.GetByID(ctx, "p1")
	assertCode(t, err, models.CodeNotFound)
}

func TestPostService_ToggleLike_LikeThenUnlike(t *testing.T) {
	t.Parallel()

	repo := newMemPostRepo(&models.Post{ID: "p1", AuthorID: "u1", Likes: models.LikeSet{}})
	svc := NewPostService(repo, noopUserRepo())
	ctx := context.Background()

	res, err := svc.ToggleLike(ctx, ToggleLikeInput{Actor: member("u2"), PostID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, &models.LikeResult{LikesCount: 1, Liked: true}, res)

	p, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.LikeSet{"u2"}, p.Likes)

	res, err = svc.ToggleLike(ctx, ToggleLikeInput{Actor: member("u2"), PostID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, &models.LikeResult{LikesCount: 0, Liked: false}, res)

	p, err = repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, p.Likes)
}

func TestPostService_ToggleLike_ConcurrentActorsKeepBothLikes(t *testing.T) {
	t.Parallel()

	repo := newMemPostRepo(&models.Post{ID: "p1", AuthorID: "u1", Likes: models.LikeSet{}})
	svc := NewPostService(repo, noopUserRepo())

	var wg sync.WaitGroup
	for _, id := range []string{"u2", "u3", "u4"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ToggleLike(context.Background(), ToggleLikeInput{Actor: member(id), PostID: "p1"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	p, err := repo.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u2", "u3", "u4"}, []string(p.Likes))
}

func TestPostService_ToggleLike_StoreError(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id string) (*models.Post, error) {
		return &models.Post{ID: id, AuthorID: "u1"}, nil
	}
	repo.applyLikeFn = func(_ context.Context, _, _ string, _ bool) (int, error) {
		return 0, models.NewInternalError(errors.New("connection reset"))
	}

	svc := NewPostService(repo, noopUserRepo())
	_, err := svc.ToggleLike(context.Background(), ToggleLikeInput{Actor: member("u2"), PostID: "p1"})
	assertCode(t, err, models.CodeInternal)
}
