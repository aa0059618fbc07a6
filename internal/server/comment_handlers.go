package server

import (
	"inkpost/internal/models"
	"inkpost/internal/service"

	"github.com/gofiber/fiber/v2"
)

type addCommentRequest struct {
	Text string `json:"text"`
}

// AddComment handles POST /api/posts/:id/comments
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param body body addCommentRequest true "Comment"
// @Success 201 {object} models.PostView
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [post]
func (s *Server) AddComment(c *fiber.Ctx) error {
	var req addCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	view, comment, err := s.commentService.AddComment(c.UserContext(), service.AddCommentInput{
		Actor:  actorFrom(c),
		PostID: c.Params("id"),
		Text:   req.Text,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishActivity(c.UserContext(), EventCommentCreated, map[string]any{
		"post_id":    view.ID,
		"comment_id": comment.ID,
		"author_id":  comment.AuthorID,
	})
	if view.Author != nil && view.Author.ID != comment.AuthorID {
		s.publishUserEvent(c.UserContext(), view.Author.ID, EventPostCommented, map[string]any{
			"post_id":    view.ID,
			"comment_id": comment.ID,
			"text":       comment.Text,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(view)
}

// DeleteComment handles DELETE /api/posts/:id/comments/:commentId
// @Summary Delete a comment
// @Description Allowed for the comment author, the post author and administrators.
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param commentId path string true "Comment ID"
// @Success 200 {object} ackResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments/{commentId} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	postID := c.Params("id")
	removed, err := s.commentService.RemoveComment(c.UserContext(), service.RemoveCommentInput{
		Actor:     actorFrom(c),
		PostID:    postID,
		CommentID: c.Params("commentId"),
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishActivity(c.UserContext(), EventCommentDeleted, map[string]any{
		"post_id":    postID,
		"comment_id": removed.ID,
	})

	return c.JSON(ackResponse{Message: "Comment removed"})
}
