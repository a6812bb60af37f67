package handlers

import (
	"kaavalcircle/internal/services"
	"kaavalcircle/internal/utils"
	"kaavalcircle/internal/validators"
	"kaavalcircle/pkg/logger"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler serves the police dashboard figures.
type AnalyticsHandler struct {
	analyticsService services.AnalyticsService
	logger           *logger.Logger
}

func NewAnalyticsHandler(analyticsService services.AnalyticsService, logger *logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		logger:           logger,
	}
}

func (h *AnalyticsHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.analyticsService.GetDashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, "", stats)
}

// GetHotspots groups complaints within 10 km of ?lat=&lng=.
func (h *AnalyticsHandler) GetHotspots(c *gin.Context) {
	lat, lng, err := validators.ParseHotspotQuery(c.Query("lat"), c.Query("lng"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	hotspots, err := h.analyticsService.GetHotspots(c.Request.Context(), lat, lng)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, "", hotspots)
}

func (h *AnalyticsHandler) GetCategoryBreakdown(c *gin.Context) {
	categories, err := h.analyticsService.GetCategoryBreakdown(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, "", categories)
}

func (h *AnalyticsHandler) GetMonthlyTrends(c *gin.Context) {
	trends, err := h.analyticsService.GetMonthlyTrends(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, "", trends)
}
