package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/virtual-client-backend/internal/logger"
	"github.com/yungbote/virtual-client-backend/internal/services"
)

type ConversationHandler struct {
	log                 *logger.Logger
	conversationService services.ConversationService
	sessionService      services.SessionService
}

func NewConversationHandler(log *logger.Logger, conversationService services.ConversationService, sessionService services.SessionService) *ConversationHandler {
	return &ConversationHandler{
		log:                 log.With("handler", "ConversationHandler"),
		conversationService: conversationService,
		sessionService:      sessionService,
	}
}

func (h *ConversationHandler) Start(c *gin.Context) {
	var req struct {
		AssignmentClientID *uuid.UUID `json:"assignment_client_id"`
		ClientProfileID    *uuid.UUID `json:"client_profile_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	session, greeting, err := h.conversationService.Start(c.Request.Context(), services.StartConversationInput{
		AssignmentClientID: req.AssignmentClientID,
		ClientProfileID:    req.ClientProfileID,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{
		"session":  session,
		"greeting": greeting,
	})
}

func (h *ConversationHandler) SendMessage(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if bErr := c.ShouldBindJSON(&req); bErr != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", bErr)
		return
	}
	userMsg, reply, sErr := h.conversationService.SendMessage(c.Request.Context(), sessionID, req.Content)
	if sErr != nil {
		RespondServiceError(c, sErr)
		return
	}
	RespondOK(c, gin.H{
		"message": userMsg,
		"reply":   reply,
	})
}

func (h *ConversationHandler) End(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	session, sErr := h.conversationService.End(c.Request.Context(), sessionID)
	if sErr != nil {
		RespondServiceError(c, sErr)
		return
	}
	RespondOK(c, gin.H{"session": session})
}

func (h *ConversationHandler) GetTranscript(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	session, messages, sErr := h.sessionService.GetTranscript(c.Request.Context(), sessionID)
	if sErr != nil {
		RespondServiceError(c, sErr)
		return
	}
	RespondOK(c, gin.H{
		"session":  session,
		"messages": messages,
	})
}

func (h *ConversationHandler) ListOwn(c *gin.Context) {
	sessions, err := h.sessionService.ListOwn(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"sessions": sessions})
}
