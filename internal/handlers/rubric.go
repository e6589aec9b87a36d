package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/virtual-client-backend/internal/logger"
	"github.com/yungbote/virtual-client-backend/internal/services"
	"github.com/yungbote/virtual-client-backend/internal/types"
)

type RubricHandler struct {
	log           *logger.Logger
	rubricService services.RubricService
}

func NewRubricHandler(log *logger.Logger, rubricService services.RubricService) *RubricHandler {
	return &RubricHandler{
		log:           log.With("handler", "RubricHandler"),
		rubricService: rubricService,
	}
}

type rubricRequest struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	Criteria    datatypes.JSON `json:"criteria" binding:"required"`
}

func (h *RubricHandler) List(c *gin.Context) {
	rubrics, err := h.rubricService.List(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"rubrics": rubrics})
}

func (h *RubricHandler) Get(c *gin.Context) {
	rubricID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	rubric, sErr := h.rubricService.Get(c.Request.Context(), rubricID)
	if sErr != nil {
		RespondServiceError(c, sErr)
		return
	}
	RespondOK(c, gin.H{"rubric": rubric})
}

func (h *RubricHandler) Create(c *gin.Context) {
	var req rubricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	rubric, err := h.rubricService.Create(c.Request.Context(), &types.EvaluationRubric{
		Name:        req.Name,
		Description: req.Description,
		Criteria:    req.Criteria,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"rubric": rubric})
}

func (h *RubricHandler) Update(c *gin.Context) {
	rubricID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req rubricRequest
	if bErr := c.ShouldBindJSON(&req); bErr != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", bErr)
		return
	}
	rubric, sErr := h.rubricService.Update(c.Request.Context(), rubricID, &types.EvaluationRubric{
		Name:        req.Name,
		Description: req.Description,
		Criteria:    req.Criteria,
	})
	if sErr != nil {
		RespondServiceError(c, sErr)
		return
	}
	RespondOK(c, gin.H{"rubric": rubric})
}

func (h *RubricHandler) Delete(c *gin.Context) {
	rubricID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if sErr := h.rubricService.Delete(c.Request.Context(), rubricID); sErr != nil {
		RespondServiceError(c, sErr)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
