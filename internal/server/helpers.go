package server

import (
	"errors"
	"log/slog"

	"inkpost/internal/middleware"
	"inkpost/internal/models"

	"github.com/gofiber/fiber/v2"
)

// respondServiceError writes err with the status its code maps to.
// Internal errors are logged with the request context.
func respondServiceError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed", slog.String("error", err.Error()))
		var appErr *models.AppError
		if !errors.As(err, &appErr) {
			err = models.NewInternalError(err)
		}
	}
	return models.RespondWithError(c, status, err)
}

// ackResponse is the body of successful deletions.
type ackResponse struct {
	Message string `json:"message"`
}
