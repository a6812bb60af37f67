package handlers

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"kaavalcircle/internal/middleware"
	"kaavalcircle/internal/models"
	"kaavalcircle/internal/services"
	"kaavalcircle/internal/utils"
	"kaavalcircle/internal/validators"
	"kaavalcircle/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "handler-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

var discard = logger.NewDiscardLogger()

func bearer(t *testing.T, userID primitive.ObjectID, userType models.UserType) string {
	t.Helper()
	token, err := utils.GenerateToken(userID, string(userType), testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	return "Bearer " + token
}

func newRouter() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	return r
}

func authed(roles ...models.UserType) []gin.HandlerFunc {
	chain := []gin.HandlerFunc{middleware.AuthRequired(testSecret)}
	if len(roles) > 0 {
		chain = append(chain, middleware.RoleRequired(roles...))
	}
	return chain
}

func route(chain []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	return append(chain, h)
}

// receivedFile is an uploaded file read back by a fake service.
type receivedFile struct {
	name        string
	contentType string
	body        string
}

func readFiles(files []*services.UploadedFile) []receivedFile {
	out := make([]receivedFile, 0, len(files))
	for _, f := range files {
		body, _ := io.ReadAll(f.Reader)
		out = append(out, receivedFile{name: f.Filename, contentType: f.ContentType, body: string(body)})
	}
	return out
}

type fakeComplaintService struct {
	createReq *validators.CreateComplaintRequest
	createdBy primitive.ObjectID
	files     []receivedFile
	result    *services.ComplaintResult
	list      []*models.ComplaintView
	viewer    models.Viewer
	statusReq *validators.ComplaintStatusRequest
	statusID  string
	officerID primitive.ObjectID
	err       error
}

func (f *fakeComplaintService) Create(_ context.Context, citizenID primitive.ObjectID, request *validators.CreateComplaintRequest, files []*services.UploadedFile) (*services.ComplaintResult, error) {
	f.createdBy = citizenID
	f.createReq = request
	f.files = readFiles(files)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeComplaintService) List(_ context.Context, viewer models.Viewer) ([]*models.ComplaintView, error) {
	f.viewer = viewer
	return f.list, f.err
}

func (f *fakeComplaintService) Get(_ context.Context, viewer models.Viewer, id string) (*models.ComplaintView, error) {
	f.viewer = viewer
	if f.err != nil {
		return nil, f.err
	}
	return f.result.Complaint, nil
}

func (f *fakeComplaintService) UpdateStatus(_ context.Context, officerID primitive.ObjectID, id string, request *validators.ComplaintStatusRequest) (*models.ComplaintView, error) {
	f.officerID = officerID
	f.statusID = id
	f.statusReq = request
	if f.err != nil {
		return nil, f.err
	}
	return f.result.Complaint, nil
}

func (f *fakeComplaintService) Report(_ context.Context, viewer models.Viewer, id string) (*services.ComplaintResult, error) {
	f.viewer = viewer
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeSOSService struct {
	createReq *validators.CreateSOSRequest
	alert     *models.SOSAlertView
	list      []*models.SOSAlertView
	viewer    models.Viewer
	statusReq *validators.SOSStatusRequest
	err       error
}

func (f *fakeSOSService) Create(_ context.Context, _ primitive.ObjectID, request *validators.CreateSOSRequest) (*models.SOSAlertView, error) {
	f.createReq = request
	return f.alert, f.err
}

func (f *fakeSOSService) List(_ context.Context, viewer models.Viewer) ([]*models.SOSAlertView, error) {
	f.viewer = viewer
	return f.list, f.err
}

func (f *fakeSOSService) UpdateStatus(_ context.Context, _ primitive.ObjectID, _ string, request *validators.SOSStatusRequest) (*models.SOSAlertView, error) {
	f.statusReq = request
	return f.alert, f.err
}

type fakeAuthService struct {
	registerReq *validators.RegisterRequest
	photo       []receivedFile
	loginReq    *validators.LoginRequest
	meID        primitive.ObjectID
	result      *services.AuthResult
	err         error
}

func (f *fakeAuthService) Register(_ context.Context, request *validators.RegisterRequest, photo *services.UploadedFile) (*services.AuthResult, error) {
	f.registerReq = request
	if photo != nil {
		f.photo = readFiles([]*services.UploadedFile{photo})
	}
	return f.result, f.err
}

func (f *fakeAuthService) Login(_ context.Context, request *validators.LoginRequest) (*services.AuthResult, error) {
	f.loginReq = request
	return f.result, f.err
}

func (f *fakeAuthService) Me(_ context.Context, userID primitive.ObjectID) (*models.User, error) {
	f.meID = userID
	if f.err != nil {
		return nil, f.err
	}
	return f.result.User, nil
}

type fakeAnalyticsService struct {
	lat, lng float64
	err      error
}

func (f *fakeAnalyticsService) GetDashboardStats(context.Context) (*models.DashboardStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.DashboardStats{TotalComplaints: 4, AvgResponseTimeHours: "5.00"}, nil
}

func (f *fakeAnalyticsService) GetHotspots(_ context.Context, lat, lng float64) ([]models.Hotspot, error) {
	f.lat, f.lng = lat, lng
	return []models.Hotspot{}, f.err
}

func (f *fakeAnalyticsService) GetCategoryBreakdown(context.Context) ([]models.CategoryShare, error) {
	return []models.CategoryShare{{Name: "Theft", Count: 3, Percent: 75}}, f.err
}

func (f *fakeAnalyticsService) GetMonthlyTrends(context.Context) ([]models.MonthlyTrend, error) {
	return []models.MonthlyTrend{}, f.err
}

type fakeConnectionServer struct {
	userID string
	rooms  []string
	err    error
}

func (f *fakeConnectionServer) Serve(w http.ResponseWriter, _ *http.Request, userID string, rooms []string) error {
	f.userID = userID
	f.rooms = rooms
	if f.err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return f.err
	}
	w.WriteHeader(http.StatusSwitchingProtocols)
	return nil
}

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error {
	return f.err
}
