package server

import (
	"inkpost/internal/models"
	"inkpost/internal/service"

	"github.com/gofiber/fiber/v2"
)

type updateProfileRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// GetMyProfile handles GET /api/users/me
// @Summary Current user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetProfile(c.UserContext(), actorFrom(c).ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
// @Summary Update username, email or password
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body updateProfileRequest true "Fields to change"
// @Success 200 {object} models.ProfileView
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	profile, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:   actorFrom(c).ID,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(profile)
}
