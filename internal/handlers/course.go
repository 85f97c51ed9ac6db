package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/classtrack/classtrack-backend/internal/logger"
	"github.com/classtrack/classtrack-backend/internal/services"
)

type CourseHandler struct {
	log           *logger.Logger
	courseService services.CourseService
}

func NewCourseHandler(log *logger.Logger, courseService services.CourseService) *CourseHandler {
	return &CourseHandler{
		log:           log.With("handler", "CourseHandler"),
		courseService: courseService,
	}
}

func (h *CourseHandler) ListUserCourses(c *gin.Context) {
	courses, err := h.courseService.ListUserCourses(c.Request.Context(), nil)
	if err != nil {
		h.log.Error("ListUserCourses failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"courses": courses})
}

type createCourseRequest struct {
	Title string `json:"title" binding:"required"`
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	course, err := h.courseService.CreateCourse(c.Request.Context(), nil, req.Title)
	if err != nil {
		h.log.Error("CreateCourse failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"course": course})
}

type followCoursesRequest struct {
	CourseIDs []uuid.UUID `json:"course_ids" binding:"required"`
}

func (h *CourseHandler) FollowCourses(c *gin.Context) {
	var req followCoursesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := h.courseService.FollowCourses(c.Request.Context(), nil, req.CourseIDs); err != nil {
		h.log.Error("FollowCourses failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"followed": req.CourseIDs})
}
