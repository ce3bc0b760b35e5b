package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/conduit-labs/publishing-api/docs"
	"github.com/conduit-labs/publishing-api/internal/api/handler"
	"github.com/conduit-labs/publishing-api/internal/api/middleware"
	"github.com/conduit-labs/publishing-api/internal/core/access"
	"github.com/conduit-labs/publishing-api/internal/core/service"
	mongorepo "github.com/conduit-labs/publishing-api/internal/infrastructure/db/mongo"
	redisrepo "github.com/conduit-labs/publishing-api/internal/infrastructure/db/redis"
	"github.com/conduit-labs/publishing-api/internal/pkg/config"
	"github.com/conduit-labs/publishing-api/pkg/logger"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(logger.Get())

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("publishing"))

	// --- Dependencies ---
	userRepo := mongorepo.NewUserRepository(db)
	articleRepo := mongorepo.NewArticleRepository(db)
	commentRepo := mongorepo.NewCommentRepository(db)
	tagCache := redisrepo.NewTagCache(rdb)

	roles := access.NewRegistry()
	policy := access.DefaultPolicy()

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	userService := service.NewUserService(userRepo, articleRepo, tokens, roles, policy, logger.Get())
	articleService := service.NewArticleService(articleRepo, userRepo, commentRepo, tagCache, roles, policy, logger.Get())
	commentService := service.NewCommentService(commentRepo, articleRepo, userRepo, roles, policy, logger.Get())

	userHandler := handler.NewUserHandler(userService)
	profileHandler := handler.NewProfileHandler(userService)
	articleHandler := handler.NewArticleHandler(articleService, userService)
	commentHandler := handler.NewCommentHandler(commentService)

	auth := middleware.Auth(tokens)
	optionalAuth := middleware.OptionalAuth(tokens)

	// --- API routes ---
	v1 := e.Group("/api")

	v1.POST("/users", userHandler.SignUp)
	v1.POST("/users/login", userHandler.SignIn)
	v1.GET("/user", userHandler.Current, auth)
	v1.PUT("/user", userHandler.Update, auth)

	v1.GET("/profiles/:username", profileHandler.Get, optionalAuth)
	v1.POST("/profiles/:username/follow", profileHandler.Follow, auth)
	v1.DELETE("/profiles/:username/follow", profileHandler.Unfollow, auth)

	v1.GET("/articles", articleHandler.List, optionalAuth)
	v1.GET("/articles/feed", articleHandler.Feed, auth)
	v1.POST("/articles", articleHandler.Create, auth)
	v1.GET("/articles/:slug", articleHandler.Get, optionalAuth)
	v1.PUT("/articles/:slug", articleHandler.Update, auth)
	v1.DELETE("/articles/:slug", articleHandler.Delete, auth)

	v1.POST("/articles/:slug/favorite", articleHandler.Favorite, auth)
	v1.DELETE("/articles/:slug/favorite", articleHandler.Unfavorite, auth)

	v1.GET("/articles/:slug/comments", commentHandler.List, optionalAuth)
	v1.POST("/articles/:slug/comments", commentHandler.Add, auth)
	v1.DELETE("/articles/:slug/comments/:id", commentHandler.Delete, auth)

	v1.GET("/tags", articleHandler.Tags)

	// --- Operational endpoints ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
