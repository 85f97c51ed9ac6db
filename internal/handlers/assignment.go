package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/classtrack/classtrack-backend/internal/logger"
	"github.com/classtrack/classtrack-backend/internal/services"
)

type AssignmentHandler struct {
	log             *logger.Logger
	dueDateService  services.DueDateService
	timelineService services.TimelineService
}

func NewAssignmentHandler(log *logger.Logger, dueDateService services.DueDateService, timelineService services.TimelineService) *AssignmentHandler {
	return &AssignmentHandler{
		log:             log.With("handler", "AssignmentHandler"),
		dueDateService:  dueDateService,
		timelineService: timelineService,
	}
}

// ListAssignments serves both halves of the timeline through the same
// partition; ?view=current (default) or ?view=past picks the bucket.
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	view := c.DefaultQuery("view", "current")
	if view != "current" && view != "past" {
		RespondError(c, http.StatusBadRequest, "invalid_view", nil)
		return
	}

	timeline, err := h.timelineService.Partition(c.Request.Context(), nil, time.Now())
	if err != nil {
		h.log.Error("ListAssignments failed", "error", err, "view", view)
		RespondServiceError(c, err)
		return
	}
	if c.Query("hide_completed") == "true" {
		timeline = timeline.DropCompleted()
	}

	items := timeline.Current
	if view == "past" {
		items = timeline.Past
	}
	RespondOK(c, gin.H{"assignments": items})
}

func (h *AssignmentHandler) ListDueDates(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("assignment_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_assignment_id", err)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := h.dueDateService.ResolvePage(c.Request.Context(), nil, assignmentID, page, limit)
	if err != nil {
		h.log.Error("ListDueDates failed", "error", err, "assignment_id", assignmentID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

type selectDueDateRequest struct {
	DueDateID uuid.UUID `json:"due_date_id" binding:"required"`
}

func (h *AssignmentHandler) SelectDueDate(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("assignment_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_assignment_id", err)
		return
	}
	var req selectDueDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	if err := h.dueDateService.ChooseDueDate(c.Request.Context(), nil, assignmentID, req.DueDateID); err != nil {
		h.log.Error("SelectDueDate failed", "error", err, "assignment_id", assignmentID, "due_date_id", req.DueDateID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"assignment_id": assignmentID, "due_date_id": req.DueDateID})
}

func (h *AssignmentHandler) CompleteAssignment(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("assignment_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_assignment_id", err)
		return
	}

	if err := h.dueDateService.MarkCompleted(c.Request.Context(), nil, assignmentID); err != nil {
		h.log.Error("CompleteAssignment failed", "error", err, "assignment_id", assignmentID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"assignment_id": assignmentID, "completed": true})
}
