package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kaavalcircle/internal/models"
	"kaavalcircle/internal/utils"
	"kaavalcircle/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "middleware-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newToken(t *testing.T, userID primitive.ObjectID, userType models.UserType) string {
	t.Helper()
	token, err := utils.GenerateToken(userID, string(userType), testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	return token
}

func authRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	chain := append([]gin.HandlerFunc{AuthRequired(testSecret)}, handlers...)
	chain = append(chain, func(c *gin.Context) {
		viewer, ok := CurrentViewer(c)
		if !ok {
			c.String(http.StatusInternalServerError, "no viewer")
			return
		}
		c.String(http.StatusOK, viewer.UserID.Hex()+":"+string(viewer.UserType))
	})
	r.GET("/protected", chain...)
	return r
}

func TestAuthRequired(t *testing.T) {
	userID := primitive.NewObjectID()
	citizenToken := newToken(t, userID, models.UserTypeCitizen)
	otherSecret, _ := utils.GenerateToken(userID, "citizen", "other-secret", time.Hour)
	badRole, _ := utils.GenerateToken(userID, "admin", testSecret, time.Hour)

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
		wantBody   string
	}{
		{name: "missing token", wantStatus: http.StatusUnauthorized},
		{name: "bearer header", header: "Bearer " + citizenToken, wantStatus: http.StatusOK, wantBody: userID.Hex() + ":citizen"},
		{name: "lowercase scheme", header: "bearer " + citizenToken, wantStatus: http.StatusOK, wantBody: userID.Hex() + ":citizen"},
		{name: "query token", query: "?token=" + citizenToken, wantStatus: http.StatusOK, wantBody: userID.Hex() + ":citizen"},
		{name: "wrong scheme", header: "Basic " + citizenToken, wantStatus: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + otherSecret, wantStatus: http.StatusUnauthorized},
		{name: "unknown user type", header: "Bearer " + badRole, wantStatus: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer not-a-jwt", wantStatus: http.StatusUnauthorized},
	}

	router := authRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRoleRequired(t *testing.T) {
	router := authRouter(PoliceRequired())

	tests := []struct {
		name       string
		userType   models.UserType
		wantStatus int
	}{
		{"police allowed", models.UserTypePolice, http.StatusOK},
		{"citizen forbidden", models.UserTypeCitizen, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+newToken(t, primitive.NewObjectID(), tt.userType))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestAuthRequiredTagsRequestContext(t *testing.T) {
	log, err := logger.NewLogger(&logger.Config{Level: logger.InfoLevel, Format: "json"})
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	buf := &bytes.Buffer{}
	log.SetOutput(buf)

	userID := primitive.NewObjectID()
	r := gin.New()
	r.Use(RequestID())
	r.GET("/protected", AuthRequired(testSecret), func(c *gin.Context) {
		log.WithContext(c.Request.Context()).Info("handled")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+newToken(t, userID, models.UserTypeCitizen))
	req.Header.Set("X-Request-ID", "req-7")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log entry: %v", err)
	}
	if entry["user_id"] != userID.Hex() {
		t.Errorf("user_id = %v, want %s", entry["user_id"], userID.Hex())
	}
	if entry["request_id"] != "req-7" {
		t.Errorf("request_id = %v, want req-7", entry["request_id"])
	}
}

func TestRoleRequiredWithoutAuth(t *testing.T) {
	r := gin.New()
	r.GET("/x", CitizenRequired(), func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000/"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/x", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
			t.Errorf("Allow-Origin = %q", got)
		}
	})

	t.Run("unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", "http://evil.example")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Allow-Origin = %q, want empty", got)
		}
	})
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	t.Run("propagates client id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Header().Get("X-Request-ID") != "abc-123" || rec.Body.String() != "abc-123" {
			t.Errorf("request id = %q / %q, want abc-123", rec.Header().Get("X-Request-ID"), rec.Body.String())
		}
	})

	t.Run("generates id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

		if id := rec.Header().Get("X-Request-ID"); id == "" || id != rec.Body.String() {
			t.Errorf("generated id = %q, body = %q", id, rec.Body.String())
		}
	})
}

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(2, time.Minute)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	if !limiter.Allow("1.1.1.1") || !limiter.Allow("1.1.1.1") {
		t.Fatal("first two requests should pass")
	}
	if limiter.Allow("1.1.1.1") {
		t.Error("third request within the burst window should be rejected")
	}
	if !limiter.Allow("2.2.2.2") {
		t.Error("other IPs have their own bucket")
	}

	now = now.Add(30 * time.Second)
	if !limiter.Allow("1.1.1.1") {
		t.Error("token should refill after 30s")
	}

	now = now.Add(2 * time.Minute)
	limiter.Cleanup()
	if limiter.Size() != 0 {
		t.Errorf("Size() = %d after cleanup, want 0", limiter.Size())
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewIPRateLimiter(1, time.Minute)
	r := gin.New()
	r.Use(limiter.Middleware())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/x", nil))
	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/x", nil))

	if first.Code != http.StatusOK {
		t.Errorf("first status = %d, want 200", first.Code)
	}
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second status = %d, want 429", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery(logger.NewDiscardLogger()), Logger(logger.NewDiscardLogger()), Metrics())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
