package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lunchmate/lunchmate-backend/internal/clients/redis"
	"github.com/lunchmate/lunchmate-backend/internal/db"
	"github.com/lunchmate/lunchmate-backend/internal/engine"
	"github.com/lunchmate/lunchmate-backend/internal/handlers"
	"github.com/lunchmate/lunchmate-backend/internal/logger"
	"github.com/lunchmate/lunchmate-backend/internal/middleware"
	"github.com/lunchmate/lunchmate-backend/internal/repos"
	"github.com/lunchmate/lunchmate-backend/internal/server"
	"github.com/lunchmate/lunchmate-backend/internal/services"
	"github.com/lunchmate/lunchmate-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 604800, log)
	engineConfigPath := utils.GetEnv("ENGINE_CONFIG_PATH", "", log)
	allowedOrigins := utils.GetEnv("ALLOWED_ORIGINS", "", log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	magicLinkRepo := repos.NewMagicLinkRepo(thePG, log)
	partyRepo := repos.NewPartyRepo(thePG, log)
	scheduleRepo := repos.NewPersonalScheduleRepo(thePG, log)
	prefRepo := repos.NewUserPreferenceRepo(thePG, log)

	// Engine
	log.Info("Setting up recommendation engine from main...")
	engineCfg, err := engine.LoadConfig(engineConfigPath)
	if err != nil {
		log.Error("Could not load engine config", "error", err)
		os.Exit(1)
	}
	directoryService := services.NewDirectoryService(thePG, log, userRepo, partyRepo, scheduleRepo, prefRepo)

	var sink engine.Sink
	recCache, err := redis.NewRecommendationCache(log)
	if err != nil {
		log.Warn("Redis recommendation mirror disabled", "error", err)
		recCache = nil
	} else {
		sink = recCache
	}

	eng, err := engine.New(log, engineCfg, directoryService, directoryService, directoryService, directoryService, sink)
	if err != nil {
		log.Error("Could not init recommendation engine", "error", err)
		os.Exit(1)
	}

	// Services
	log.Info("Setting up Services from main...")
	emailService := services.NewEmailService(log)
	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, magicLinkRepo, emailService, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	userService := services.NewUserService(thePG, log, userRepo, userTokenRepo, prefRepo, recCache)
	partyService := services.NewPartyService(thePG, log, partyRepo)
	scheduleService := services.NewScheduleService(thePG, log, scheduleRepo)
	recService, err := services.NewRecommendationService(log, eng, engineCfg.Timezone)
	if err != nil {
		log.Error("Could not init RecommendationService", "error", err)
		os.Exit(1)
	}
	recService.StartDailyWorker(context.Background())

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(log, userService)
	partyHandler := handlers.NewPartyHandler(log, partyService)
	scheduleHandler := handlers.NewScheduleHandler(log, scheduleService)
	recHandler := handlers.NewRecommendationHandler(log, recService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AllowedOrigins:        allowedOrigins,
		AuthHandler:           authHandler,
		AuthMiddleware:        authMiddleware,
		UserHandler:           userHandler,
		PartyHandler:          partyHandler,
		ScheduleHandler:       scheduleHandler,
		RecommendationHandler: recHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
