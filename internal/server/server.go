// Package server contains the HTTP handlers for the admin API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "wikiadmin/docs" // swagger docs
	"wikiadmin/internal/auth"
	"wikiadmin/internal/bootstrap"
	"wikiadmin/internal/config"
	"wikiadmin/internal/database"
	"wikiadmin/internal/middleware"
	"wikiadmin/internal/models"
	"wikiadmin/internal/repository"
	"wikiadmin/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// bodyLimit leaves headroom above the largest accepted upload.
const bodyLimit = service.MaxVideoSize + 4*service.MB

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	policy         *auth.Policy
	codec          *auth.Codec
	userRepo       repository.UserRepository

	accounts   *service.AccountService
	wikis      *service.WikiService
	articles   *service.ArticleService
	categories *service.CategoryService
	comments   *service.CommentService
	configs    *service.ConfigService
	settings   *service.SettingService
	dashboard  *service.DashboardService
	tutorials  *service.TutorialService
	uploads    *service.UploadService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SeedBuiltIns: true})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	policy, err := auth.NewPolicy()
	if err != nil {
		return nil, fmt.Errorf("authorization policy: %w", err)
	}
	codec := auth.NewCodec(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience,
		time.Duration(cfg.JWTTTLHours)*time.Hour)

	userRepo := repository.NewUserRepository(db)
	wikiRepo := repository.NewWikiRepository(db)
	articleRepo := repository.NewArticleRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	configRepo := repository.NewConfigRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	storage := service.NewLocalStorage(cfg.UploadDir, cfg.UploadBaseURL)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("wikiadmin-api"),
		policy:         policy,
		codec:          codec,
		userRepo:       userRepo,
		accounts:       service.NewAccountService(userRepo, codec),
		wikis:          service.NewWikiService(wikiRepo),
		articles:       service.NewArticleService(articleRepo, categoryRepo),
		categories:     service.NewCategoryService(categoryRepo, articleRepo),
		comments:       service.NewCommentService(commentRepo),
		configs:        service.NewConfigService(configRepo),
		settings:       service.NewSettingService(settingRepo),
		dashboard:      service.NewDashboardService(statsRepo),
		tutorials:      service.NewTutorialService(categoryRepo, articleRepo),
		uploads:        service.NewUploadService(storage),
	}, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and Trace ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowCredentials: origins != "*",
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				models.NewValidationError("Too many requests, please try again later"))
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Wiki Admin Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Public routes
	api.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	api.Get("/tutorials", s.GetTutorials)

	management := s.RequireTier(auth.TierManagement)
	superAdmin := s.RequireTier(auth.TierSuperAdmin)

	// Everything below needs an active session
	protected := api.Group("", s.AuthRequired())
	protected.Post("/logout", s.Logout)

	// Own profile. Define these BEFORE the generic /users/:id routes.
	users := protected.Group("/users")
	users.Get("/profile", s.GetProfile)
	users.Put("/profile", s.UpdateProfile)
	users.Post("/change-password", s.ChangePassword)

	users.Get("/", management, s.ListUsers)
	users.Post("/", superAdmin, s.CreateUser)
	users.Put("/:id/status", management, s.SetUserStatus)
	users.Put("/:id", management, s.UpdateUser)
	users.Delete("/:id", management, s.DeleteUser)

	admins := protected.Group("/admins")
	admins.Get("/", management, s.ListAdmins)
	admins.Post("/", superAdmin, s.CreateAdmin)
	admins.Get("/:id", management, s.GetAdmin)
	admins.Put("/:id", superAdmin, s.UpdateAdmin)
	admins.Delete("/:id", superAdmin, s.DeleteAdmin)

	wikis := protected.Group("/wikis", superAdmin)
	wikis.Get("/", s.ListWikis)
	wikis.Post("/", s.CreateWiki)
	wikis.Post("/:id/approve", s.ApproveWiki)
	wikis.Post("/:id/reject", s.RejectWiki)
	wikis.Get("/:id", s.GetWiki)
	wikis.Put("/:id", s.UpdateWiki)
	wikis.Delete("/:id", s.DeleteWiki)

	articles := protected.Group("/articles")
	articles.Get("/", s.ListArticles)
	articles.Post("/", s.CreateArticle)
	articles.Get("/:id", s.GetArticle)
	articles.Put("/:id", s.UpdateArticle)
	articles.Delete("/:id", s.DeleteArticle)

	categories := protected.Group("/article-categories")
	categories.Get("/", s.ListCategories)
	categories.Get("/tree", s.GetCategoryTree)
	categories.Post("/", s.CreateCategory)
	categories.Put("/:id", s.UpdateCategory)
	categories.Delete("/:id", s.DeleteCategory)

	comments := protected.Group("/comments")
	comments.Post("/", s.ListComments)
	comments.Put("/", s.BatchUpdateComments)

	configs := protected.Group("/configs")
	configs.Get("/", s.ListConfigs)
	configs.Post("/", s.CreateConfig)
	configs.Patch("/:id/status", s.SetConfigStatus)
	configs.Get("/:id", s.GetConfig)
	configs.Put("/:id", s.UpdateConfig)
	configs.Patch("/:id", s.UpdateConfig)
	configs.Delete("/:id", s.DeleteConfig)

	protected.Get("/settings/system", management, s.GetSystemSettings)
	protected.Put("/settings/system", superAdmin, s.UpdateSystemSettings)

	protected.Get("/dashboard/stats", management, s.GetDashboardStats)

	upload := protected.Group("/upload")
	upload.Post("/avatar", s.UploadAvatar)
	upload.Post("/media", s.UploadMedia)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis is optional: without it the cache and token revocation are off.
	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
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

// errorHandler keeps Fiber-level failures (unknown routes, bad methods,
// panics) inside the response envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.Envelope{Code: fe.Code, Message: fe.Message})
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error",
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
	)
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// App builds the Fiber application with middleware and routes attached.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Wiki Admin API",
		BodyLimit:    bodyLimit,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.App()

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	// Close database connection
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	// Close Redis connection
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
