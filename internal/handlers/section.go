package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/virtual-client-backend/internal/logger"
	"github.com/yungbote/virtual-client-backend/internal/services"
	"github.com/yungbote/virtual-client-backend/internal/types"
)

type SectionHandler struct {
	log               *logger.Logger
	sectionService    services.SectionService
	enrollmentService services.EnrollmentService
}

func NewSectionHandler(log *logger.Logger, sectionService services.SectionService, enrollmentService services.EnrollmentService) *SectionHandler {
	return &SectionHandler{
		log:               log.With("handler", "SectionHandler"),
		sectionService:    sectionService,
		enrollmentService: enrollmentService,
	}
}

type sectionRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Term        string `json:"term"`
}

func (h *SectionHandler) List(c *gin.Context) {
	sections, err := h.sectionService.List(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"sections": sections})
}

func (h *SectionHandler) Get(c *gin.Context) {
	sectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	section, sErr := h.sectionService.Get(c.Request.Context(), sectionID)
	if sErr != nil {
		RespondServiceError(c, sErr)
		return
	}
	RespondOK(c, gin.H{"section": section})
}

func (h *SectionHandler) Create(c *gin.Context) {
	var req sectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	section, err := h.sectionService.Create(c.Request.Context(), &types.CourseSection{
		Name:        req.Name,
		Description: req.Description,
		Term:        req.Term,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"section": section})
}

func (h *SectionHandler) Update(c *gin.Context) {
	sectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req sectionRequest
	if bErr := c.ShouldBindJSON(&req); bErr != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", bErr)
		return
	}
	section, sErr := h.sectionService.Update(c.Request.Context(), sectionID, &types.CourseSection{
		Name:        req.Name,
		Description: req.Description,
		Term:        req.Term,
	})
	if sErr != nil {
		RespondServiceError(c, sErr)
		return
	}
	RespondOK(c, gin.H{"section": section})
}

func (h *SectionHandler) Delete(c *gin.Context) {
	sectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if sErr := h.sectionService.Delete(c.Request.Context(), sectionID); sErr != nil {
		RespondServiceError(c, sErr)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

func (h *SectionHandler) ListRoster(c *gin.Context) {
	sectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	roster, sErr := h.enrollmentService.ListRoster(c.Request.Context(), sectionID)
	if sErr != nil {
		RespondServiceError(c, sErr)
		return
	}
	RespondOK(c, gin.H{"enrollments": roster})
}

func (h *SectionHandler) Enroll(c *gin.Context) {
	sectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req struct {
		StudentEmail string `json:"student_email" binding:"required"`
	}
	if bErr := c.ShouldBindJSON(&req); bErr != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", bErr)
		return
	}
	enrollment, sErr := h.enrollmentService.Enroll(c.Request.Context(), sectionID, req.StudentEmail)
	if sErr != nil {
		RespondServiceError(c, sErr)
		return
	}
	RespondCreated(c, gin.H{"enrollment": enrollment})
}

func (h *SectionHandler) Unenroll(c *gin.Context) {
	sectionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	studentID, err := uuid.Parse(c.Param("studentId"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if sErr := h.enrollmentService.Unenroll(c.Request.Context(), sectionID, studentID); sErr != nil {
		RespondServiceError(c, sErr)
		return
	}
	RespondOK(c, gin.H{"unenrolled": true})
}
