package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classtrack/classtrack-backend/internal/services"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondServiceError maps service sentinels onto HTTP statuses; anything
// unrecognized is a 500.
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, services.ErrAssignmentNotFound):
		RespondError(c, http.StatusNotFound, "assignment_not_found", err)
	case errors.Is(err, services.ErrDueDateNotFound):
		RespondError(c, http.StatusNotFound, "due_date_not_found", err)
	case errors.Is(err, services.ErrCourseNotFound):
		RespondError(c, http.StatusNotFound, "course_not_found", err)
	case errors.Is(err, services.ErrUserNotFound):
		RespondError(c, http.StatusNotFound, "user_not_found", err)
	case errors.Is(err, services.ErrSyncNotFound):
		RespondError(c, http.StatusNotFound, "sync_not_found", err)
	case errors.Is(err, services.ErrDueDateConflict):
		RespondError(c, http.StatusConflict, "due_date_conflict", err)
	case errors.Is(err, services.ErrSyncUnavailable):
		RespondError(c, http.StatusServiceUnavailable, "sync_unavailable", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}
