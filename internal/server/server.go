// Package server exposes the thread store over HTTP.
package server

import (
	"context"
	"errors"
	"time"

	_ "campus/docs" // swagger docs
	"campus/internal/cache"
	"campus/internal/config"
	"campus/internal/database"
	"campus/internal/middleware"
	"campus/internal/models"
	"campus/internal/repository"
	"campus/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	cache          *cache.Cache
	promMiddleware *fiberprometheus.FiberPrometheus
	validate       *validator.Validate
	threads        *service.ThreadService
	likes          *service.LikeService
}

// NewServer wires repositories and services over an already opened pool.
// c may be nil to run without Redis.
func NewServer(cfg *config.Config, db *gorm.DB, c *cache.Cache) *Server {
	posts := repository.NewPostRepository(db, c)
	users := repository.NewUserRepository(db)
	likes := repository.NewLikeRepository(db, c)

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "campus-api"
	}

	return &Server{
		config:         cfg,
		db:             db,
		cache:          c,
		promMiddleware: middleware.InitMetrics(serviceName),
		validate:       newValidator(),
		threads:        service.NewThreadService(posts, users),
		likes:          service.NewLikeService(likes, posts),
	}
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "campus-api",
		ErrorHandler: errorHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.OptionalAuth(s.config.JWTSecret))
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
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Correlation-ID",
		MaxAge:       86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	posts := api.Group("/posts")
	posts.Post("/", s.createLimit("create_post"), s.CreatePost)
	posts.Get("/:postId", s.GetPost)
	posts.Put("/:postId", s.UpdatePost)
	posts.Delete("/:postId", s.DeletePost)

	comments := api.Group("/comment")
	comments.Post("/", s.createLimit("create_comment"), s.CreateComment)
	comments.Get("/:postId", s.GetComments)
	comments.Put("/:commentId", s.UpdateComment)
	comments.Delete("/:commentId", s.DeleteComment)

	likes := api.Group("/like")
	// specific /user route before the generic /:postId routes
	likes.Get("/user/:userId", s.GetUserLikedPosts)
	likes.Post("/:postId/toggle", s.createLimit("toggle_like"), s.ToggleLike)
	likes.Get("/:postId/count", s.GetLikeCount)
	likes.Get("/:postId/status", s.CheckLikeStatus)
	likes.Get("/:postId/likes", s.GetPostLikes)
}

// createLimit rate limits write endpoints per caller when a limit is configured.
func (s *Server) createLimit(resource string) fiber.Handler {
	if s.config.RateLimitPerMinute <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return middleware.RateLimit(s.cache.Client(), s.config.RateLimitPerMinute, time.Minute, resource)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional: when it
// is not configured the service is still ready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.cache.Enabled() {
		redisStatus = "healthy"
		if err := s.cache.Ping(ctx); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
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

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	return models.RespondWithError(c, models.StatusOf(err), err)
}
