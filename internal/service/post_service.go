// Package service holds the blog's business operations on top of the repositories.
package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"inkpost/internal/models"
	"inkpost/internal/observability"
	"inkpost/internal/policy"
	"inkpost/internal/repository"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 50

	maxTitleLen   = 300
	maxContentLen = 50000
	maxTags       = 20
	maxTagLen     = 50
)

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

type CreatePostInput struct {
	Actor   models.Actor
	Title   string
	Content string
	Tags    []string
}

type ListPostsInput struct {
	Page  int
	Limit int
}

// UpdatePostInput carries per-field presence: a nil field is left untouched.
type UpdatePostInput struct {
	Actor   models.Actor
	PostID  string
	Title   *string
	Content *string
	Tags    *[]string
}

type DeletePostInput struct {
	Actor  models.Actor
	PostID string
}

type ToggleLikeInput struct {
	Actor  models.Actor
	PostID string
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
	}
}

// NormalizePage applies the listing defaults: page < 1 becomes 1, limit < 1
// becomes DefaultLimit and limit is capped at MaxLimit.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.PostView, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Title and content required")
	}
	if err := validatePostFields(title, in.Content); err != nil {
		return nil, err
	}
	tags, err := normalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:    title,
		Content:  in.Content,
		AuthorID: in.Actor.ID,
		Tags:     tags,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.view(ctx, post)
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) (*models.PostPage, error) {
	page, limit := NormalizePage(in.Page, in.Limit)

	total, err := s.postRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, posts)
	if err != nil {
		return nil, err
	}
	return &models.PostPage{Total: total, Page: page, Limit: limit, Posts: views}, nil
}

func (s *PostService) GetPost(ctx context.Context, id string) (*models.PostView, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, post)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.PostView, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if !policy.CanModifyPost(post, in.Actor) {
		observability.AuthorizationDenials.WithLabelValues("update_post").Inc()
		return nil, models.NewForbiddenError("Not authorized")
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, models.NewValidationError("Title cannot be empty")
		}
		post.Title = title
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, models.NewValidationError("Content cannot be empty")
		}
		post.Content = *in.Content
	}
	if err := validatePostFields(post.Title, post.Content); err != nil {
		return nil, err
	}
	if in.Tags != nil {
		tags, err := normalizeTags(*in.Tags)
		if err != nil {
			return nil, err
		}
		post.Tags = tags
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.view(ctx, post)
}

// DeletePost removes the post and returns it as it was before removal.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if !policy.CanModifyPost(post, in.Actor) {
		observability.AuthorizationDenials.WithLabelValues("delete_post").Inc()
		return nil, models.NewForbiddenError("Not authorized")
	}
	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		return nil, err
	}
	return post, nil
}

// ToggleLike flips the actor's like on the post. The decision is taken on
// the freshly loaded like set and persisted as an atomic set insert or
// removal, so concurrent toggles by different actors are all kept.
func (s *PostService) ToggleLike(ctx context.Context, in ToggleLikeInput) (*models.LikeResult, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	_, liked := models.ToggleLike(post.Likes, in.Actor.ID)
	count, err := s.postRepo.ApplyLike(ctx, post.ID, in.Actor.ID, liked)
	if err != nil {
		return nil, err
	}
	observability.RecordLikeToggle(liked)
	return &models.LikeResult{LikesCount: count, Liked: liked}, nil
}

func (s *PostService) view(ctx context.Context, post *models.Post) (*models.PostView, error) {
	views, err := s.views(ctx, []*models.Post{post})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *PostService) views(ctx context.Context, posts []*models.Post) ([]*models.PostView, error) {
	return resolveViews(ctx, s.userRepo, posts)
}

// resolveViews projects posts with their authors and commenters looked up in
// a single batch.
func resolveViews(ctx context.Context, userRepo repository.UserRepository, posts []*models.Post) ([]*models.PostView, error) {
	var ids []string
	seen := make(map[string]bool)
	for _, p := range posts {
		for _, id := range p.UserIDs() {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	users, err := userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]*models.PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, models.NewPostView(p, users))
	}
	return views, nil
}

func validatePostFields(title, content string) error {
	if utf8.RuneCountInString(title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 300 characters)")
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return models.NewValidationError("Content too long (max 50000 characters)")
	}
	return nil
}

// normalizeTags trims tags and drops empty ones, keeping order.
func normalizeTags(in []string) ([]string, error) {
	tags := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if utf8.RuneCountInString(t) > maxTagLen {
			return nil, models.NewValidationError("Tag too long (max 50 characters)")
		}
		tags = append(tags, t)
	}
	if len(tags) > maxTags {
		return nil, models.NewValidationError("Too many tags (max 20)")
	}
	return tags, nil
}
