package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/virtual-client-backend/internal/logger"
	"github.com/yungbote/virtual-client-backend/internal/services"
	"github.com/yungbote/virtual-client-backend/internal/types"
)

type AssignmentHandler struct {
	log               *logger.Logger
	assignmentService services.AssignmentService
	sessionService    services.SessionService
}

func NewAssignmentHandler(log *logger.Logger, assignmentService services.AssignmentService, sessionService services.SessionService) *AssignmentHandler {
	return &AssignmentHandler{
		log:               log.With("handler", "AssignmentHandler"),
		assignmentService: assignmentService,
		sessionService:    sessionService,
	}
}

type assignmentRequest struct {
	SectionID      uuid.UUID  `json:"section_id"`
	Title          string     `json:"title" binding:"required"`
	Description    string     `json:"description"`
	AssignmentType string     `json:"assignment_type"`
	AvailableFrom  *time.Time `json:"available_from"`
	DueDate        *time.Time `json:"due_date"`
}

func (h *AssignmentHandler) List(c *gin.Context) {
	sectionID, err := uuid.Parse(c.Query("section_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	assignments, sErr := h.assignmentService.List(c.Request.Context(), sectionID)
	if sErr != nil {
		RespondServiceError(c, sErr)
		return
	}
	RespondOK(c, gin.H{"assignments": assignments})
}

func (h *AssignmentHandler) Get(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	assignment, sErr := h.assignmentService.Get(c.Request.Context(), assignmentID)
	if sErr != nil {
		RespondServiceError(c, sErr)
		return
	}
	RespondOK(c, gin.H{"assignment": assignment})
}

func (h *AssignmentHandler) Create(c *gin.Context) {
	var req assignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	if req.SectionID == uuid.Nil {
		RespondError(c, http.StatusBadRequest, "section_id_required", nil)
		return
	}
	assignment, err := h.assignmentService.Create(c.Request.Context(), &types.Assignment{
		SectionID:      req.SectionID,
		Title:          req.Title,
		Description:    req.Description,
		AssignmentType: req.AssignmentType,
		AvailableFrom:  req.AvailableFrom,
		DueDate:        req.DueDate,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"assignment": assignment})
}

func (h *AssignmentHandler) Update(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req assignmentRequest
	if bErr := c.ShouldBindJSON(&req); bErr != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", bErr)
		return
	}
	assignment, sErr := h.assignmentService.Update(c.Request.Context(), assignmentID, &types.Assignment{
		Title:          req.Title,
		Description:    req.Description,
		AssignmentType: req.AssignmentType,
		AvailableFrom:  req.AvailableFrom,
		DueDate:        req.DueDate,
	})
	if sErr != nil {
		RespondServiceError(c, sErr)
		return
	}
	RespondOK(c, gin.H{"assignment": assignment})
}

func (h *AssignmentHandler) Delete(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if sErr := h.assignmentService.Delete(c.Request.Context(), assignmentID); sErr != nil {
		RespondServiceError(c, sErr)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

func (h *AssignmentHandler) Publish(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	assignment, sErr := h.assignmentService.Publish(c.Request.Context(), assignmentID)
	if sErr != nil {
		RespondServiceError(c, sErr)
		return
	}
	RespondOK(c, gin.H{"assignment": assignment})
}

func (h *AssignmentHandler) Unpublish(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	assignment, sErr := h.assignmentService.Unpublish(c.Request.Context(), assignmentID)
	if sErr != nil {
		RespondServiceError(c, sErr)
		return
	}
	RespondOK(c, gin.H{"assignment": assignment})
}

func (h *AssignmentHandler) AttachClient(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req struct {
		ClientProfileID uuid.UUID `json:"client_profile_id" binding:"required"`
		RubricID        uuid.UUID `json:"rubric_id" binding:"required"`
		DisplayOrder    int       `json:"display_order"`
	}
	if bErr := c.ShouldBindJSON(&req); bErr != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", bErr)
		return
	}
	ac, sErr := h.assignmentService.AttachClient(c.Request.Context(), assignmentID, req.ClientProfileID, req.RubricID, req.DisplayOrder)
	if sErr != nil {
		RespondServiceError(c, sErr)
		return
	}
	RespondCreated(c, gin.H{"assignment_client": ac})
}

func (h *AssignmentHandler) ListClients(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	acs, sErr := h.assignmentService.ListClients(c.Request.Context(), assignmentID)
	if sErr != nil {
		RespondServiceError(c, sErr)
		return
	}
	RespondOK(c, gin.H{"assignment_clients": acs})
}

func (h *AssignmentHandler) RemoveClient(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	acID, err := uuid.Parse(c.Param("clientId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if sErr := h.assignmentService.RemoveClient(c.Request.Context(), assignmentID, acID); sErr != nil {
		RespondServiceError(c, sErr)
		return
	}
	RespondOK(c, gin.H{"removed": true})
}

// ListSessions lets a teacher review sessions recorded against one of their
// assignments.
func (h *AssignmentHandler) ListSessions(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	sessions, sErr := h.sessionService.ListForAssignment(c.Request.Context(), assignmentID)
	if sErr != nil {
		RespondServiceError(c, sErr)
		return
	}
	RespondOK(c, gin.H{"sessions": sessions})
}
