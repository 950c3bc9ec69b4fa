package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"companion-llm/internal/service"
)

// UsageHandler expone los contadores de uso del periodo vigente.
type UsageHandler struct {
	logger    *zap.Logger
	userServ  *service.UserService
	usageServ *service.UsageService
}

func NewUsageHandler(logger *zap.Logger, userServ *service.UserService, usageServ *service.UsageService) *UsageHandler {
	return &UsageHandler{
		logger:    logger,
		userServ:  userServ,
		usageServ: usageServ,
	}
}

// GetUsage maneja GET /usage.
func (h *UsageHandler) GetUsage(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	user, err := h.userServ.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	report, err := h.usageServ.Report(c.Request.Context(), user)
	if err != nil {
		h.logger.Error("usage report failed", zap.Error(err), zap.String("user_id", claims.UserID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not read usage"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"usage": report})
}
