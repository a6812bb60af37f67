package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	handlers "kaavalcircle/internal/handlers/shared"
	"kaavalcircle/pkg/logger"

	"github.com/gin-gonic/gin"
)

func testRouter(uploadsDir string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.NewDiscardLogger()
	router := gin.New()
	SetupRoutes(router, &Handlers{
		Auth:      handlers.NewAuthHandler(nil, log),
		Complaint: handlers.NewComplaintHandler(nil, log),
		SOS:       handlers.NewSOSHandler(nil, log),
		Analytics: handlers.NewAnalyticsHandler(nil, log),
		WebSocket: handlers.NewWebSocketHandler(nil, log),
		Health:    handlers.NewHealthHandler(nil, "test"),
	}, Options{
		JWTSecret:      "secret",
		UploadsDir:     uploadsDir,
		MetricsHandler: http.NotFoundHandler(),
	})
	return router
}

func TestSetupRoutesRegistersAPI(t *testing.T) {
	router := testRouter("")

	registered := make(map[string]bool)
	for _, r := range router.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	want := []string{
		"POST /api/auth/register",
		"POST /api/auth/login",
		"GET /api/auth/me",
		"POST /api/complaints",
		"GET /api/complaints",
		"GET /api/complaints/:id",
		"GET /api/complaints/:id/report",
		"PUT /api/complaints/:id",
		"PATCH /api/complaints/:id/status",
		"POST /api/sos",
		"GET /api/sos",
		"PATCH /api/sos/:id/status",
		"GET /api/analytics/dashboard",
		"GET /api/analytics/hotspots",
		"GET /api/analytics/categories",
		"GET /api/analytics/monthly-trends",
		"GET /ws",
		"GET /health",
		"GET /metrics",
	}
	for _, route := range want {
		if !registered[route] {
			t.Errorf("route %s not registered", route)
		}
	}
	if registered["GET /uploads/*filepath"] {
		t.Error("/uploads should only be served for local storage")
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := testRouter(t.TempDir())

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/complaints"},
		{http.MethodPost, "/api/sos"},
		{http.MethodGet, "/api/analytics/dashboard"},
		{http.MethodGet, "/api/auth/me"},
		{http.MethodGet, "/ws"},
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", tc.method, tc.path, rec.Code)
		}
	}
}
