package server

import (
	"inkpost/internal/models"
	"inkpost/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// updatePostRequest distinguishes omitted fields (nil) from present ones.
type updatePostRequest struct {
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
	Tags    *[]string `json:"tags"`
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body createPostRequest true "Post"
// @Success 201 {object} models.PostView
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	view, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		Actor:   actorFrom(c),
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishActivity(c.UserContext(), EventPostCreated, map[string]any{
		"post_id":   view.ID,
		"author_id": actorFrom(c).ID,
	})

	return c.Status(fiber.StatusCreated).JSON(view)
}

// GetPosts handles GET /api/posts
// @Summary List posts, newest first
// @Tags posts
// @Produce json
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10, max 50)"
// @Success 200 {object} models.PostPage
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page, err := s.postService.ListPosts(c.UserContext(), service.ListPostsInput{
		Page:  c.QueryInt("page", service.DefaultPage),
		Limit: c.QueryInt("limit", service.DefaultLimit),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(page)
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post with its author and commenters
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} models.PostView
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	view, err := s.postService.GetPost(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(view)
}

// UpdatePost handles PUT /api/posts/:id
// @Summary Update a post's title, content or tags
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param body body updatePostRequest true "Fields to change"
// @Success 200 {object} models.PostView
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	var req updatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	view, err := s.postService.UpdatePost(c.UserContext(), service.UpdatePostInput{
		Actor:   actorFrom(c),
		PostID:  c.Params("id"),
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishActivity(c.UserContext(), EventPostUpdated, map[string]any{
		"post_id": view.ID,
	})

	return c.JSON(view)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} ackResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	post, err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{
		Actor:  actorFrom(c),
		PostID: c.Params("id"),
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishActivity(c.UserContext(), EventPostDeleted, map[string]any{
		"post_id": post.ID,
	})

	return c.JSON(ackResponse{Message: "Post removed"})
}

// ToggleLike handles POST /api/posts/:id/like
// @Summary Like or unlike a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} models.LikeResult
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/like [post]
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	postID := c.Params("id")
	actor := actorFrom(c)

	res, err := s.postService.ToggleLike(c.UserContext(), service.ToggleLikeInput{
		Actor:  actor,
		PostID: postID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishActivity(c.UserContext(), EventPostLikeToggled, map[string]any{
		"post_id":     postID,
		"user_id":     actor.ID,
		"liked":       res.Liked,
		"likes_count": res.LikesCount,
	})

	return c.JSON(res)
}

