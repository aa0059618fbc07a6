// Package server contains the HTTP and WebSocket handlers for the blog API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "inkpost/docs" // swagger docs
	"inkpost/internal/auth"
	"inkpost/internal/config"
	"inkpost/internal/middleware"
	"inkpost/internal/models"
	"inkpost/internal/notifications"
	"inkpost/internal/repository"
	"inkpost/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	tokens         *auth.TokenManager
	denylist       *auth.Denylist
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	postService    *service.PostService
	commentService *service.CommentService
	userService    *service.UserService
	authService    *service.AuthService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("inkpost-api"),
		userRepo:       repository.NewUserRepository(db),
		postRepo:       repository.NewPostRepository(db),
		tokens:         auth.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour),
		denylist:       auth.NewDenylist(redisClient),
		hub:            notifications.NewHub(),
	}
	s.postService = service.NewPostService(s.postRepo, s.userRepo)
	s.commentService = service.NewCommentService(s.postRepo, s.userRepo)
	s.userService = service.NewUserService(s.userRepo)
	s.authService = service.NewAuthService(s.userRepo, s.tokens, s.denylist)

	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
	}

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Tracing runs before the context middleware so the trace ID reaches logs.
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/", s.Banner)
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	// AuthRequired is attached per route so unknown paths still reach NotFound.
	authRequired := s.AuthRequired()

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", s.Register)
	authRoutes.Post("/login", s.Login)
	authRoutes.Post("/logout", authRequired, s.Logout)

	users := api.Group("/users")
	users.Get("/me", authRequired, s.GetMyProfile)
	users.Put("/me", authRequired, s.UpdateMyProfile)

	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Post("/", authRequired, s.CreatePost)
	// Specific /:id/:resource routes before generic /:id routes
	posts.Post("/:id/like", authRequired, s.ToggleLike)
	posts.Post("/:id/comments", authRequired, s.AddComment)
	posts.Delete("/:id/comments/:commentId", authRequired, s.DeleteComment)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", authRequired, s.UpdatePost)
	posts.Delete("/:id", authRequired, s.DeletePost)

	api.Get("/ws", s.WebSocketAuthRequired(), s.WebsocketUpgrade, s.WebsocketHandler())

	app.Use(s.NotFound)
}

// NotFound answers every unmatched route.
func (s *Server) NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
		Message: "Not found - " + c.OriginalURL(),
		Code:    models.CodeNotFound,
	})
}

// Banner handles GET /
func (s *Server) Banner(c *fiber.Ctx) error {
	return c.SendString("Blog API is running")
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: an
// absent client reports "disabled", an unreachable one fails readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if s.db == nil {
		dbStatus = "unhealthy"
	} else if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// App builds the Fiber application with middleware and routes.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "inkpost API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Message: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.App()

	if s.notifier != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				middleware.Logger.Error("failed to start hub wiring",
					slog.String("hub", s.hub.Name()), slog.String("error", err.Error()))
			}
		}()
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down hub", slog.String("error", err.Error()))
	}

	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if cerr := sqlDB.Close(); cerr != nil {
				middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
			}
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
