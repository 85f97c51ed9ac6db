package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/classtrack/classtrack-backend/internal/handlers"
	"github.com/classtrack/classtrack-backend/internal/middleware"
)

type RouterConfig struct {
	DB                *gorm.DB
	AuthMiddleware    *middleware.AuthMiddleware
	UserHandler       *handlers.UserHandler
	CourseHandler     *handlers.CourseHandler
	AssignmentHandler *handlers.AssignmentHandler
	SyncHandler       *handlers.SyncHandler
	AllowedOrigins    []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("classtrack-backend"))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.HealthCheck(cfg.DB))

	// Protected
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	protected.GET("/me", cfg.UserHandler.GetMe)
	protected.GET("/protected", cfg.UserHandler.Protected)

	protected.GET("/courses", cfg.CourseHandler.ListUserCourses)
	protected.POST("/courses", cfg.CourseHandler.CreateCourse)
	protected.POST("/user-courses", cfg.CourseHandler.FollowCourses)

	protected.GET("/assignments", cfg.AssignmentHandler.ListAssignments)
	protected.GET("/assignments/:assignment_id/dates", cfg.AssignmentHandler.ListDueDates)
	protected.POST("/assignments/:assignment_id/dates/select", cfg.AssignmentHandler.SelectDueDate)
	protected.POST("/assignments/:assignment_id/complete", cfg.AssignmentHandler.CompleteAssignment)

	protected.POST("/sync-courses-temporal", cfg.SyncHandler.StartCourseSync)
	protected.GET("/sync-courses-temporal/latest-status", cfg.SyncHandler.LatestStatus)

	return router
}

// SplitOrigins parses a comma-separated origin list from config.
func SplitOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
