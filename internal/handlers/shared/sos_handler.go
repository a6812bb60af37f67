package handlers

import (
	"kaavalcircle/internal/middleware"
	"kaavalcircle/internal/services"
	"kaavalcircle/internal/utils"
	"kaavalcircle/internal/validators"
	"kaavalcircle/pkg/logger"

	"github.com/gin-gonic/gin"
)

type SOSHandler struct {
	sosService services.SOSService
	logger     *logger.Logger
}

func NewSOSHandler(sosService services.SOSService, logger *logger.Logger) *SOSHandler {
	return &SOSHandler{
		sosService: sosService,
		logger:     logger,
	}
}

// CreateSOS raises an alert for the calling citizen and notifies police.
func (h *SOSHandler) CreateSOS(c *gin.Context) {
	citizenID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var request validators.CreateSOSRequest
	if !bindJSON(c, &request) {
		return
	}

	alert, err := h.sosService.Create(c.Request.Context(), citizenID, &request)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.CreatedResponse(c, "SOS alert sent", alert)
}

func (h *SOSHandler) GetSOSAlerts(c *gin.Context) {
	viewer, ok := currentViewer(c)
	if !ok {
		return
	}

	alerts, err := h.sosService.List(c.Request.Context(), viewer)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.ListResponse(c, alerts, len(alerts))
}

func (h *SOSHandler) UpdateSOSStatus(c *gin.Context) {
	officerID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var request validators.SOSStatusRequest
	if !bindJSON(c, &request) {
		return
	}

	alert, err := h.sosService.UpdateStatus(c.Request.Context(), officerID, c.Param("id"), &request)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "SOS status updated", alert)
}
