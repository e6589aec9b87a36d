package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/virtual-client-backend/internal/logger"
	"github.com/yungbote/virtual-client-backend/internal/services"
)

type StudentHandler struct {
	log            *logger.Logger
	studentService services.StudentService
}

func NewStudentHandler(log *logger.Logger, studentService services.StudentService) *StudentHandler {
	return &StudentHandler{
		log:            log.With("handler", "StudentHandler"),
		studentService: studentService,
	}
}

func (h *StudentHandler) ListSections(c *gin.Context) {
	sections, err := h.studentService.ListSections(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"sections": sections})
}

func (h *StudentHandler) ListAssignments(c *gin.Context) {
	assignments, err := h.studentService.ListAvailableAssignments(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"assignments": assignments})
}

func (h *StudentHandler) ListAssignmentClients(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	acs, sErr := h.studentService.ListAssignmentClients(c.Request.Context(), assignmentID)
	if sErr != nil {
		RespondServiceError(c, sErr)
		return
	}
	RespondOK(c, gin.H{"assignment_clients": acs})
}
