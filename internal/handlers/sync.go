package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/classtrack/classtrack-backend/internal/logger"
	"github.com/classtrack/classtrack-backend/internal/services"
)

type SyncHandler struct {
	log         *logger.Logger
	syncService services.SyncService
}

func NewSyncHandler(log *logger.Logger, syncService services.SyncService) *SyncHandler {
	return &SyncHandler{
		log:         log.With("handler", "SyncHandler"),
		syncService: syncService,
	}
}

type startSyncRequest struct {
	CourseIDs    []uuid.UUID `json:"course_ids"`
	ForceRefresh bool        `json:"force_refresh"`
}

func (h *SyncHandler) StartCourseSync(c *gin.Context) {
	var req startSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	start, err := h.syncService.StartCourseSync(c.Request.Context(), nil, req.CourseIDs, req.ForceRefresh)
	if err != nil {
		h.log.Error("StartCourseSync failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, start)
}

func (h *SyncHandler) LatestStatus(c *gin.Context) {
	status, err := h.syncService.LatestStatus(c.Request.Context(), nil)
	if err != nil {
		h.log.Error("LatestStatus failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, status)
}
