package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"inkpost/internal/models"
	"inkpost/internal/observability"
	"inkpost/internal/policy"
	"inkpost/internal/repository"
)

const maxCommentLen = 10000

type CommentService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	now      func() time.Time
}

type AddCommentInput struct {
	Actor  models.Actor
	PostID string
	Text   string
}

type RemoveCommentInput struct {
	Actor     models.Actor
	PostID    string
	CommentID string
}

func NewCommentService(postRepo repository.PostRepository, userRepo repository.UserRepository) *CommentService {
	return &CommentService{
		postRepo: postRepo,
		userRepo: userRepo,
		now:      time.Now,
	}
}

// AddComment appends a comment to the post and returns the stored post with
// authors resolved.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (*models.PostView, *models.Comment, error) {
	text, err := validateCommentText(in.Text)
	if err != nil {
		return nil, nil, err
	}
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, nil, err
	}

	comment := appendComment(post, in.Actor.ID, text, s.now())
	if err := s.postRepo.AppendComment(ctx, post.ID, comment); err != nil {
		return nil, nil, err
	}
	observability.CommentsChanged.WithLabelValues("added").Inc()

	stored, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return nil, nil, err
	}
	views, err := resolveViews(ctx, s.userRepo, []*models.Post{stored})
	if err != nil {
		return nil, nil, err
	}
	return views[0], &comment, nil
}

// RemoveComment deletes a comment when the actor wrote it, owns the post or
// is an administrator. It returns the removed comment.
func (s *CommentService) RemoveComment(ctx context.Context, in RemoveCommentInput) (*models.Comment, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	comment, err := detachComment(post, in.CommentID, in.Actor)
	if err != nil {
		if models.HasCode(err, models.CodeForbidden) {
			observability.AuthorizationDenials.WithLabelValues("delete_comment").Inc()
		}
		return nil, err
	}
	if err := s.postRepo.RemoveComment(ctx, post.ID, comment.ID); err != nil {
		return nil, err
	}
	observability.CommentsChanged.WithLabelValues("removed").Inc()
	return &comment, nil
}

func validateCommentText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", models.NewValidationError("Comment text required")
	}
	if utf8.RuneCountInString(text) > maxCommentLen {
		return "", models.NewValidationError("Comment too long (max 10000 characters)")
	}
	return text, nil
}

// appendComment adds a new comment by authorID to the end of post's comments.
func appendComment(post *models.Post, authorID, text string, now time.Time) models.Comment {
	c := models.NewComment(authorID, text, now)
	post.AppendComment(c)
	return c
}

// detachComment removes commentID from post if actor may delete it. The post
// is left untouched on error.
func detachComment(post *models.Post, commentID string, actor models.Actor) (models.Comment, error) {
	comment, ok := post.FindComment(commentID)
	if !ok {
		return models.Comment{}, models.NewNotFoundError("Comment")
	}
	if !policy.CanDeleteComment(post, comment, actor) {
		return models.Comment{}, models.NewForbiddenError("Not authorized to delete this comment")
	}
	post.RemoveComment(commentID)
	return comment, nil
}
