package server

import (
	"log/slog"
	"strings"

	"inkpost/internal/auth"
	"inkpost/internal/middleware"
	"inkpost/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired returns the authentication middleware. On success it stores
// the user ID, role and verified claims in locals.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return s.authenticate(c, bearerToken(c.Get("Authorization")))
	}
}

// WebSocketAuthRequired authenticates websocket upgrades. Browsers cannot set
// headers on the upgrade request, so the token query parameter is read first
// and the Authorization header is the fallback.
func (s *Server) WebSocketAuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("token")
		if token == "" {
			token = bearerToken(c.Get("Authorization"))
		}
		return s.authenticate(c, token)
	}
}

func (s *Server) authenticate(c *fiber.Ctx, tokenString string) error {
	if tokenString == "" {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
	}

	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid or expired token"))
	}

	revoked, err := s.denylist.IsRevoked(c.UserContext(), claims.JTI)
	if err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "token revocation check failed",
			slog.String("error", err.Error()))
	}
	if revoked {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Token has been revoked"))
	}

	c.Locals("userID", claims.UserID)
	c.Locals("claims", claims)
	c.SetUserContext(middleware.WithUserID(c.UserContext(), claims.UserID))

	return c.Next()
}

func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// actorFrom returns the authenticated principal stored by AuthRequired.
func actorFrom(c *fiber.Ctx) models.Actor {
	claims := claimsFrom(c)
	if claims == nil {
		return models.Actor{}
	}
	return claims.Actor()
}

func claimsFrom(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals("claims").(*auth.Claims)
	return claims
}
