package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"inkpost/internal/models"
	"inkpost/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations.
//
// Like and comment mutations are applied as single atomic JSONB updates on
// the post row, so concurrent mutations of the same post never overwrite each
// other. Update writes only the editable fields and is last-writer-wins
// against other updates.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]*models.Post, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
	// ApplyLike adds (liked=true) or removes userID from the post's like set
	// and returns the resulting set size.
	ApplyLike(ctx context.Context, postID, userID string, liked bool) (int, error)
	AppendComment(ctx context.Context, postID string, comment models.Comment) error
	RemoveComment(ctx context.Context, postID, commentID string) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

const (
	addLikeSQL = `UPDATE posts SET likes = CASE WHEN jsonb_exists(likes, ?) THEN likes ELSE likes || jsonb_build_array(?::text) END, updated_at = ? ` +
		`WHERE id = ? RETURNING jsonb_array_length(likes) AS likes_count`
	removeLikeSQL = `UPDATE posts SET likes = likes - ?::text, updated_at = ? ` +
		`WHERE id = ? RETURNING jsonb_array_length(likes) AS likes_count`

	appendCommentExpr = `comments || jsonb_build_array(?::jsonb)`
	removeCommentExpr = `COALESCE((SELECT jsonb_agg(elem ORDER BY ord) FROM jsonb_array_elements(comments) WITH ORDINALITY AS t(elem, ord) ` +
		`WHERE elem->>'id' <> ?), '[]'::jsonb)`
	hasCommentCond = `EXISTS (SELECT 1 FROM jsonb_array_elements(comments) AS c(elem) WHERE c.elem->>'id' = ?)`
)

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Create", "posts")
	defer span.End()

	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	if !validID(id) {
		return nil, models.NewNotFoundError("Post")
	}
	ctx, span := observability.TraceRepositoryMethod(ctx, "GetByID", "posts")
	defer span.End()

	var post models.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	ctx, span := observability.TraceRepositoryMethod(ctx, "List", "posts")
	defer span.End()

	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&total).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return total, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	ctx, span := observability.TraceRepositoryMethod(ctx, "Update", "posts")
	defer span.End()

	res := r.db.WithContext(ctx).
		Model(post).
		Select("title", "content", "tags", "updated_at").
		Updates(post)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post")
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return models.NewNotFoundError("Post")
	}
	ctx, span := observability.TraceRepositoryMethod(ctx, "Delete", "posts")
	defer span.End()

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Post{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post")
	}
	return nil
}

func (r *postRepository) ApplyLike(ctx context.Context, postID, userID string, liked bool) (int, error) {
	if !validID(postID) {
		return 0, models.NewNotFoundError("Post")
	}
	ctx, span := observability.TraceRepositoryMethod(ctx, "ApplyLike", "posts")
	defer span.End()

	var rows []struct{ LikesCount int }
	now := time.Now()
	var q *gorm.DB
	if liked {
		q = r.db.WithContext(ctx).Raw(addLikeSQL, userID, userID, now, postID)
	} else {
		q = r.db.WithContext(ctx).Raw(removeLikeSQL, userID, now, postID)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	if len(rows) == 0 {
		return 0, models.NewNotFoundError("Post")
	}
	return rows[0].LikesCount, nil
}

func (r *postRepository) AppendComment(ctx context.Context, postID string, comment models.Comment) error {
	if !validID(postID) {
		return models.NewNotFoundError("Post")
	}
	ctx, span := observability.TraceRepositoryMethod(ctx, "AppendComment", "posts")
	defer span.End()

	payload, err := json.Marshal(comment)
	if err != nil {
		return models.NewInternalError(err)
	}
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumns(map[string]any{
			"comments":   gorm.Expr(appendCommentExpr, string(payload)),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post")
	}
	return nil
}

// RemoveComment drops the comment with commentID while keeping the order of
// the rest. It reports NotFound when the post is missing or no longer holds
// that comment.
func (r *postRepository) RemoveComment(ctx context.Context, postID, commentID string) error {
	if !validID(postID) {
		return models.NewNotFoundError("Post")
	}
	ctx, span := observability.TraceRepositoryMethod(ctx, "RemoveComment", "posts")
	defer span.End()

	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", postID).
		Where(hasCommentCond, commentID).
		UpdateColumns(map[string]any{
			"comments":   gorm.Expr(removeCommentExpr, commentID),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment")
	}
	return nil
}
