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

type ClientProfileHandler struct {
	log                  *logger.Logger
	clientProfileService services.ClientProfileService
}

func NewClientProfileHandler(log *logger.Logger, clientProfileService services.ClientProfileService) *ClientProfileHandler {
	return &ClientProfileHandler{
		log:                  log.With("handler", "ClientProfileHandler"),
		clientProfileService: clientProfileService,
	}
}

type clientProfileRequest struct {
	Name                string         `json:"name" binding:"required"`
	Age                 int            `json:"age"`
	Race                string         `json:"race"`
	Gender              string         `json:"gender"`
	SocioeconomicStatus string         `json:"socioeconomic_status"`
	Issues              datatypes.JSON `json:"issues"`
	BackgroundStory     string         `json:"background_story"`
	PersonalityTraits   datatypes.JSON `json:"personality_traits"`
	CommunicationStyle  string         `json:"communication_style"`
}

func (r *clientProfileRequest) toType() *types.ClientProfile {
	return &types.ClientProfile{
		Name:                r.Name,
		Age:                 r.Age,
		Race:                r.Race,
		Gender:              r.Gender,
		SocioeconomicStatus: r.SocioeconomicStatus,
		Issues:              r.Issues,
		BackgroundStory:     r.BackgroundStory,
		PersonalityTraits:   r.PersonalityTraits,
		CommunicationStyle:  r.CommunicationStyle,
	}
}

func (h *ClientProfileHandler) List(c *gin.Context) {
	profiles, err := h.clientProfileService.List(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"client_profiles": profiles})
}

func (h *ClientProfileHandler) Get(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	profile, sErr := h.clientProfileService.Get(c.Request.Context(), profileID)
	if sErr != nil {
		RespondServiceError(c, sErr)
		return
	}
	RespondOK(c, gin.H{"client_profile": profile})
}

func (h *ClientProfileHandler) Create(c *gin.Context) {
	var req clientProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	profile, err := h.clientProfileService.Create(c.Request.Context(), req.toType())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"client_profile": profile})
}

func (h *ClientProfileHandler) Update(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req clientProfileRequest
	if bErr := c.ShouldBindJSON(&req); bErr != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", bErr)
		return
	}
	profile, sErr := h.clientProfileService.Update(c.Request.Context(), profileID, req.toType())
	if sErr != nil {
		RespondServiceError(c, sErr)
		return
	}
	RespondOK(c, gin.H{"client_profile": profile})
}

func (h *ClientProfileHandler) Delete(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if sErr := h.clientProfileService.Delete(c.Request.Context(), profileID); sErr != nil {
		RespondServiceError(c, sErr)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
