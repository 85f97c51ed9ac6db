package main

import (
	"context"
	"fmt"
	"os"

	"github.com/classtrack/classtrack-backend/internal/db"
	"github.com/classtrack/classtrack-backend/internal/handlers"
	"github.com/classtrack/classtrack-backend/internal/logger"
	"github.com/classtrack/classtrack-backend/internal/middleware"
	"github.com/classtrack/classtrack-backend/internal/observability"
	"github.com/classtrack/classtrack-backend/internal/repos"
	"github.com/classtrack/classtrack-backend/internal/server"
	"github.com/classtrack/classtrack-backend/internal/services"
	"github.com/classtrack/classtrack-backend/internal/temporalx"
	"github.com/classtrack/classtrack-backend/internal/utils"
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
	allowedOrigins := utils.GetEnv("CORS_ALLOWED_ORIGINS", "", log)

	// Tracing
	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "classtrack-backend",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	})
	if otelShutdown != nil {
		defer otelShutdown(context.Background())
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Timeline cache (optional)
	timelineCache, err := services.NewTimelineCache(log)
	if err != nil {
		log.Warn("Timeline cache disabled", "error", err)
		timelineCache = nil
	}

	// Temporal (optional: sync endpoints degrade to 503 without it)
	temporalClient, err := temporalx.NewClient(log)
	if err != nil {
		log.Warn("Temporal init failed; course sync disabled", "error", err)
	}
	if temporalClient != nil {
		defer temporalClient.Close()
	}
	temporalCfg := temporalx.LoadConfig()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	courseRepo := repos.NewCourseRepo(thePG, log)
	sourceRepo := repos.NewSourceRepo(thePG, log)
	assignmentRepo := repos.NewAssignmentRepo(thePG, log)
	dueDateRepo := repos.NewDueDateRepo(thePG, log)
	userAssignmentRepo := repos.NewUserAssignmentRepo(thePG, log)
	userCourseRepo := repos.NewUserCourseRepo(thePG, log)
	jobSyncRepo := repos.NewJobSyncRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(thePG, log, userRepo, jwtSecretKey)
	userService := services.NewUserService(thePG, log, userRepo)
	courseService := services.NewCourseService(thePG, log, courseRepo, sourceRepo, userCourseRepo, timelineCache)
	dueDateService := services.NewDueDateService(thePG, log, assignmentRepo, dueDateRepo, sourceRepo, userAssignmentRepo, timelineCache)
	timelineService := services.NewTimelineService(thePG, log, courseRepo, assignmentRepo, dueDateRepo, userAssignmentRepo, userCourseRepo, timelineCache)
	syncService := services.NewSyncService(thePG, log, temporalClient, temporalCfg.TaskQueue, jobSyncRepo, userCourseRepo, courseRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	userHandler := handlers.NewUserHandler(log, userService)
	courseHandler := handlers.NewCourseHandler(log, courseService)
	assignmentHandler := handlers.NewAssignmentHandler(log, dueDateService, timelineService)
	syncHandler := handlers.NewSyncHandler(log, syncService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		DB:                thePG,
		AuthMiddleware:    authMiddleware,
		UserHandler:       userHandler,
		CourseHandler:     courseHandler,
		AssignmentHandler: assignmentHandler,
		SyncHandler:       syncHandler,
		AllowedOrigins:    server.SplitOrigins(allowedOrigins),
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
