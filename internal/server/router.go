package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/lunchmate/lunchmate-backend/internal/handlers"
	"github.com/lunchmate/lunchmate-backend/internal/middleware"
)

type RouterConfig struct {
	AllowedOrigins        string
	AuthHandler           *handlers.AuthHandler
	AuthMiddleware        *middleware.AuthMiddleware
	UserHandler           *handlers.UserHandler
	PartyHandler          *handlers.PartyHandler
	ScheduleHandler       *handlers.ScheduleHandler
	RecommendationHandler *handlers.RecommendationHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := []string{"http://localhost:3000", "http://localhost:5173"}
	if cfg.AllowedOrigins != "" {
		origins = strings.Split(cfg.AllowedOrigins, ",")
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	auth := router.Group("/auth")
	{
		auth.POST("/magic-link", cfg.AuthHandler.SendMagicLink)
		auth.POST("/verify", cfg.AuthHandler.Verify)
		auth.GET("/verify-link", cfg.AuthHandler.VerifyLink)
		auth.POST("/register", cfg.AuthHandler.Register)
		auth.POST("/refresh", cfg.AuthHandler.Refresh)
	}

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	api.POST("/auth/logout", cfg.AuthHandler.Logout)
	// User
	api.GET("/user/me", cfg.UserHandler.GetMe)
	api.PUT("/user/me", cfg.UserHandler.UpdateProfile)
	api.DELETE("/user/me", cfg.UserHandler.DeleteAccount)
	// Parties
	api.POST("/parties", cfg.PartyHandler.Create)
	api.GET("/parties", cfg.PartyHandler.ListByDate)
	api.GET("/parties/:id", cfg.PartyHandler.Get)
	api.POST("/parties/:id/join", cfg.PartyHandler.Join)
	api.POST("/parties/:id/leave", cfg.PartyHandler.Leave)
	api.DELETE("/parties/:id", cfg.PartyHandler.Delete)
	// Personal schedules
	api.POST("/schedules", cfg.ScheduleHandler.Create)
	api.GET("/schedules", cfg.ScheduleHandler.ListMine)
	api.DELETE("/schedules/:id", cfg.ScheduleHandler.Delete)
	// Recommendations
	api.GET("/recommendations", cfg.RecommendationHandler.GetForDate)
	api.POST("/recommendations/generate", cfg.RecommendationHandler.Generate)

	return router
}
