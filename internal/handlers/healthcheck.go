package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Root is the unauthenticated service banner.
func Root(c *gin.Context) {
	RespondOK(c, gin.H{"service": "classtrack-backend", "status": "ok"})
}

// HealthCheck reports liveness, including a DB ping so orchestrators catch a
// wedged pool before users do.
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			RespondError(c, http.StatusServiceUnavailable, "db_unreachable", err)
			return
		}
		c.String(http.StatusOK, "ok")
	}
}
