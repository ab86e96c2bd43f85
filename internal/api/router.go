package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/upskillai/roadmap-api/internal/api/handler"
	"github.com/upskillai/roadmap-api/internal/api/middleware"
	"github.com/upskillai/roadmap-api/internal/core/ports"
	"github.com/upskillai/roadmap-api/internal/infrastructure/http/handlers"
)

// Deps carries the constructed services and clients the router wires up.
// Everything is built by the startup sequence; the router performs no
// construction of its own.
type Deps struct {
	Auth       ports.AuthService
	Admin      ports.AccountAdminService
	Roadmaps   ports.RoadmapService
	Generation ports.GenerationService

	Mongo *mongo.Database
	Redis *redis.Client

	AllowedOrigins []string
	Log            zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     deps.AllowedOrigins,
		AllowCredentials: true,
	}))
	e.Use(echoprometheus.NewMiddleware("roadmap"))

	authRequired := middleware.Auth(deps.Auth)
	adminOnly := middleware.AdminOnly()

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	roadmapHandler := handler.NewRoadmapHandler(deps.Generation, deps.Roadmaps, deps.Log)
	adminHandler := handler.NewAdminHandler(deps.Admin)
	health := handlers.NewHealth(deps.Mongo, deps.Redis)

	// --- Root & ops endpoints ---
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "AI Upskilling Platform API is running"})
	})
	e.GET("/health", health.Live)
	e.GET("/health/ready", health.Ready)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", authHandler.Me, authRequired)

	// --- Roadmap routes ---
	roadmap := e.Group("/api/roadmap", authRequired)
	roadmap.POST("/generate", roadmapHandler.Generate)
	roadmap.POST("/save", roadmapHandler.Save)
	roadmap.GET("/list", roadmapHandler.List)
	roadmap.GET("/:id", roadmapHandler.Get)
	roadmap.DELETE("/:id", roadmapHandler.Delete)

	// --- Admin routes ---
	admin := e.Group("/api/admin", authRequired, adminOnly)
	admin.GET("/users", adminHandler.ListUsers)
	admin.PUT("/users/:id/block", adminHandler.BlockUser)
	admin.PUT("/users/:id/unblock", adminHandler.UnblockUser)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)

	return e
}
