package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/classtrack/classtrack-backend/internal/logger"
	"github.com/classtrack/classtrack-backend/internal/requestdata"
	"github.com/classtrack/classtrack-backend/internal/services"
)

type UserHandler struct {
	log         *logger.Logger
	userService services.UserService
}

func NewUserHandler(log *logger.Logger, userService services.UserService) *UserHandler {
	return &UserHandler{
		log:         log.With("handler", "UserHandler"),
		userService: userService,
	}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.userService.GetMe(c.Request.Context(), nil)
	if err != nil {
		h.log.Error("GetMe failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"user": user})
}

// Protected is an auth smoke endpoint: reaching it at all means the token
// parsed and the user row exists.
func (h *UserHandler) Protected(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	RespondOK(c, gin.H{"message": "authenticated", "user_id": rd.UserID})
}
