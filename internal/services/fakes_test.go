package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"kaavalcircle/internal/models"
	"kaavalcircle/internal/repositories/interfaces"
	"kaavalcircle/pkg/cache"
	"kaavalcircle/pkg/maps"
	"kaavalcircle/pkg/report"
	"kaavalcircle/pkg/sms"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errStore = errors.New("store unavailable")

type fakeUserRepo struct {
	users     map[primitive.ObjectID]*models.User
	err       error
	createErr error
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, u := range r.users {
		if u.UserType == user.UserType && u.LoginIdentifier() == user.LoginIdentifier() {
			return interfaces.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	out := make(map[primitive.ObjectID]*models.User)
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (r *fakeUserRepo) GetByIdentifier(_ context.Context, userType models.UserType, identifier string) (*models.User, error) {
	for _, u := range r.users {
		if u.UserType == userType && u.LoginIdentifier() == identifier {
			return u, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id primitive.ObjectID) error {
	now := time.Now()
	if u, ok := r.users[id]; ok {
		u.LastLoginAt = &now
	}
	return nil
}

type fakeComplaintRepo struct {
	complaints []*models.Complaint
	lastFilter interfaces.CaseFilter
	createErr  error
}

func (r *fakeComplaintRepo) Create(_ context.Context, c *models.Complaint) error {
	if r.createErr != nil {
		return r.createErr
	}
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	r.complaints = append(r.complaints, c)
	return nil
}

func (r *fakeComplaintRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Complaint, error) {
	for _, c := range r.complaints {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (r *fakeComplaintRepo) List(_ context.Context, filter interfaces.CaseFilter) ([]*models.Complaint, error) {
	r.lastFilter = filter
	out := []*models.Complaint{}
	for _, c := range r.complaints {
		if filter.CitizenID == nil || c.CitizenID == *filter.CitizenID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeComplaintRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.ComplaintStatus, officerID primitive.ObjectID) (*models.Complaint, error) {
	for _, c := range r.complaints {
		if c.ID == id {
			c.Status = status
			c.AssignedTo = &officerID
			c.UpdatedAt = time.Now()
			return c, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

type fakeSOSRepo struct {
	alerts []*models.SOSAlert
}

func (r *fakeSOSRepo) Create(_ context.Context, a *models.SOSAlert) error {
	a.ID = primitive.NewObjectID()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	r.alerts = append(r.alerts, a)
	return nil
}

func (r *fakeSOSRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.SOSAlert, error) {
	for _, a := range r.alerts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (r *fakeSOSRepo) List(_ context.Context, filter interfaces.CaseFilter) ([]*models.SOSAlert, error) {
	out := []*models.SOSAlert{}
	for _, a := range r.alerts {
		if filter.CitizenID == nil || a.CitizenID == *filter.CitizenID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeSOSRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.SOSStatus, officerID primitive.ObjectID) (*models.SOSAlert, error) {
	for _, a := range r.alerts {
		if a.ID == id {
			a.Status = status
			a.AssignedTo = &officerID
			a.UpdatedAt = time.Now()
			return a, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

type fakeAnalyticsRepo struct {
	total, pending, activeSOS int64
	closed                    []models.ResponseSample
	near                      []*models.Complaint
	categories                []models.CategoryCount
	months                    []models.MonthCount
	err                       error

	nearArgs  [3]float64
	monthArgs struct {
		since    time.Time
		timezone string
	}
}

func (r *fakeAnalyticsRepo) CountComplaints(context.Context) (int64, error) {
	return r.total, r.err
}

func (r *fakeAnalyticsRepo) CountComplaintsByStatus(_ context.Context, status models.ComplaintStatus) (int64, error) {
	if status != models.ComplaintStatusPending {
		return 0, nil
	}
	return r.pending, r.err
}

func (r *fakeAnalyticsRepo) CountSOSByStatus(_ context.Context, status models.SOSStatus) (int64, error) {
	if status != models.SOSStatusActive {
		return 0, nil
	}
	return r.activeSOS, r.err
}

func (r *fakeAnalyticsRepo) ClosedComplaintTimings(context.Context) ([]models.ResponseSample, error) {
	return r.closed, r.err
}

func (r *fakeAnalyticsRepo) ComplaintsNear(_ context.Context, lat, lng, maxDistance float64) ([]*models.Complaint, error) {
	r.nearArgs = [3]float64{lat, lng, maxDistance}
	return r.near, r.err
}

func (r *fakeAnalyticsRepo) CountComplaintsByCategory(context.Context) ([]models.CategoryCount, error) {
	return r.categories, r.err
}

func (r *fakeAnalyticsRepo) CountComplaintsByMonth(_ context.Context, since time.Time, timezone string) ([]models.MonthCount, error) {
	r.monthArgs.since = since
	r.monthArgs.timezone = timezone
	return r.months, r.err
}

type published struct {
	room, event string
	payload     interface{}
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []published
}

func (n *fakeNotifier) Publish(room, event string, payload interface{}) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, published{room, event, payload})
	return true
}

type fakeEvidence struct {
	stored    []string
	discarded []string
	err       error
}

func (e *fakeEvidence) StoreEvidence(_ context.Context, files []*UploadedFile) ([]string, error) {
	if e.err != nil {
		return nil, e.err
	}
	urls := []string{}
	for _, f := range files {
		url := "http://localhost:5000/uploads/evidence/" + f.Filename
		e.stored = append(e.stored, url)
		urls = append(urls, url)
	}
	return urls, nil
}

func (e *fakeEvidence) StorePhoto(_ context.Context, f *UploadedFile) (string, error) {
	return "http://localhost:5000/uploads/photos/" + f.Filename, e.err
}

func (e *fakeEvidence) Fetch(context.Context, string) ([]byte, error) {
	return nil, errors.New("not stored")
}

func (e *fakeEvidence) Discard(_ context.Context, refs []string) {
	e.discarded = append(e.discarded, refs...)
}

type fakeRenderer struct {
	err  error
	last *report.Complaint
}

func (r *fakeRenderer) Render(_ context.Context, c *report.Complaint) ([]byte, error) {
	r.last = c
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-1.3 fake"), nil
}

// memoryCache mimics the redis cache, including the JSON round trip.
type memoryCache struct {
	mu       sync.Mutex
	values   map[string][]byte
	counters map[string]int64
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: map[string][]byte{}, counters: map[string]int64{}}
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.values[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = data
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.values, key)
		delete(c.counters, key)
	}
	return nil
}

func (c *memoryCache) IncrementWithExpiry(_ context.Context, key string, _ time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[key]++
	return c.counters[key], nil
}

func (c *memoryCache) GetInt(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters[key], nil
}

func (c *memoryCache) GetTTL(context.Context, string) (time.Duration, error) {
	return 15 * time.Minute, nil
}

type fakeGeocoder struct {
	address string
	err     error
	calls   int
}

func (g *fakeGeocoder) ReverseGeocode(context.Context, float64, float64) (*maps.GeocodeResponse, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &maps.GeocodeResponse{Results: []maps.GeocodeResult{{Address: g.address}}}, nil
}

type fakeSMS struct {
	mu   sync.Mutex
	sent []*sms.SMSRequest
}

func (s *fakeSMS) SendSMS(_ context.Context, req *sms.SMSRequest) (*sms.SMSResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, req)
	return &sms.SMSResponse{MessageID: "m1", Status: "sent"}, nil
}

func (s *fakeSMS) Name() string { return "fake" }

func newCitizen(phone string) *models.User {
	return &models.User{
		ID:       primitive.NewObjectID(),
		UserType: models.UserTypeCitizen,
		Name:     "Priya",
		Phone:    phone,
		Address:  "12 Gandhi Street, Chennai",
	}
}

func newOfficer(batch string) *models.User {
	return &models.User{
		ID:          primitive.NewObjectID(),
		UserType:    models.UserTypePolice,
		Name:        "Inspector Kumar",
		StationName: "T Nagar",
		BatchNo:     batch,
	}
}

func floatPtr(v float64) *float64 { return &v }
