package server

import (
	"log/slog"

	"inkpost/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketUpgrade rejects plain HTTP requests on the websocket route.
func (s *Server) WebsocketUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// WebsocketHandler returns a websocket handler that registers connections with
// the activity hub. Authentication is handled by route middleware.
// @Summary Activity event stream
// @Tags realtime
// @Security BearerAuth
// @Param token query string false "Access token for clients that cannot set headers"
// @Router /ws [get]
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals("userID").(string)
		if !ok || userID == "" {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("websocket registration rejected",
				slog.String("user_id", userID), slog.String("error", err.Error()))
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		defer s.hub.UnregisterClient(client)

		go client.WritePump()
		client.ReadPump()
	})
}
