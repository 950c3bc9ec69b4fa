package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"companion-llm/internal/repository"
	"companion-llm/internal/service"
)

// ChatHandler mantiene dependencias para el endpoint del pipeline y las
// lecturas de sesiones/mensajes.
type ChatHandler struct {
	logger   *zap.Logger
	chatServ *service.ChatService
	sessions repository.SessionRepository
	messages repository.MessageRepository
	limiter  service.ChatRateLimiter
}

func NewChatHandler(
	logger *zap.Logger,
	chatServ *service.ChatService,
	sessions repository.SessionRepository,
	messages repository.MessageRepository,
	limiter service.ChatRateLimiter,
) *ChatHandler {
	return &ChatHandler{
		logger:   logger,
		chatServ: chatServ,
		sessions: sessions,
		messages: messages,
		limiter:  limiter,
	}
}

// Chat maneja POST /chat: el único punto de entrada del pipeline conversacional.
func (h *ChatHandler) Chat(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	if h.limiter != nil && !h.limiter.Allow(claims.UserID) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		return
	}

	var req struct {
		SessionID      string `json:"session_id"`
		Message        string `json:"message" binding:"required"`
		AudioRequested bool   `json:"audio_requested"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := h.chatServ.Chat(c.Request.Context(), claims.UserID, service.ChatInput{
		SessionID:      req.SessionID,
		Message:        req.Message,
		AudioRequested: req.AudioRequested,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "message empty or invalid"})
		case errors.Is(err, service.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case errors.Is(err, service.ErrSessionForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "session belongs to another user"})
		case errors.Is(err, service.ErrCompletionFailed):
			h.logger.Error("completion failed", zap.Error(err), zap.String("user_id", claims.UserID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate reply"})
		default:
			h.logger.Error("chat pipeline failed", zap.Error(err), zap.String("user_id", claims.UserID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process message"})
		}
		return
	}

	var audio interface{}
	if result.Audio != "" {
		audio = result.Audio
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": result.SessionID,
		"reply":      result.Reply,
		"audio":      audio,
		"persisted":  result.Persisted,
	})
}

// ListSessions maneja GET /sessions.
func (h *ChatHandler) ListSessions(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	sessions, err := h.sessions.ListByUserID(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("list sessions failed", zap.Error(err), zap.String("user_id", claims.UserID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list sessions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// ListMessages maneja GET /sessions/:id/messages con chequeo de propiedad.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	sessionID := c.Param("id")
	session, err := h.sessions.GetByID(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	if session.UserID != claims.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "session belongs to another user"})
		return
	}

	messages, err := h.messages.ListBySessionID(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("list messages failed", zap.Error(err), zap.String("session_id", sessionID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": session, "messages": messages})
}
