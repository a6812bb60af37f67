package routes

import (
	"net/http"

	handlers "kaavalcircle/internal/handlers/shared"
	"kaavalcircle/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler the API serves.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Complaint *handlers.ComplaintHandler
	SOS       *handlers.SOSHandler
	Analytics *handlers.AnalyticsHandler
	WebSocket *handlers.WebSocketHandler
	Health    *handlers.HealthHandler
}

type Options struct {
	JWTSecret     string
	WebSocketPath string
	// UploadsDir is served at /uploads when evidence is stored on local disk.
	UploadsDir     string
	MetricsHandler http.Handler
}

func SetupRoutes(router *gin.Engine, h *Handlers, opts Options) {
	auth := middleware.AuthRequired(opts.JWTSecret)
	police := middleware.PoliceRequired()
	citizen := middleware.CitizenRequired()

	router.GET("/health", h.Health.Health)
	if opts.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(opts.MetricsHandler))
	}
	if opts.UploadsDir != "" {
		router.Static("/uploads", opts.UploadsDir)
	}

	wsPath := opts.WebSocketPath
	if wsPath == "" {
		wsPath = "/ws"
	}
	router.GET(wsPath, auth, h.WebSocket.Connect)

	api := router.Group("/api")
	SetupAuthRoutes(api, h.Auth, auth)

	complaints := api.Group("/complaints")
	complaints.Use(auth)
	{
		complaints.POST("", citizen, h.Complaint.CreateComplaint)
		complaints.GET("", h.Complaint.GetComplaints)
		complaints.GET("/:id", h.Complaint.GetComplaint)
		complaints.GET("/:id/report", h.Complaint.GetComplaintReport)
		complaints.PUT("/:id", police, h.Complaint.UpdateComplaintStatus)
		complaints.PATCH("/:id/status", police, h.Complaint.UpdateComplaintStatus)
	}

	sos := api.Group("/sos")
	sos.Use(auth)
	{
		sos.POST("", citizen, h.SOS.CreateSOS)
		sos.GET("", h.SOS.GetSOSAlerts)
		sos.PATCH("/:id/status", police, h.SOS.UpdateSOSStatus)
	}

	analytics := api.Group("/analytics")
	analytics.Use(auth, police)
	{
		analytics.GET("/dashboard", h.Analytics.GetDashboardStats)
		analytics.GET("/hotspots", h.Analytics.GetHotspots)
		analytics.GET("/categories", h.Analytics.GetCategoryBreakdown)
		analytics.GET("/monthly-trends", h.Analytics.GetMonthlyTrends)
	}
}

// SetupAuthRoutes registers the account endpoints. Only /me needs a token.
func SetupAuthRoutes(r *gin.RouterGroup, authHandler *handlers.AuthHandler, auth gin.HandlerFunc) {
	group := r.Group("/auth")
	{
		group.POST("/register", authHandler.Register)
		group.POST("/login", authHandler.Login)
		group.GET("/me", auth, authHandler.Me)
	}
}
