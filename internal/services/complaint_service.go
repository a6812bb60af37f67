package services

import (
	"context"
	"encoding/base64"
	"errors"

	"kaavalcircle/internal/models"
	"kaavalcircle/internal/repositories/interfaces"
	"kaavalcircle/internal/utils"
	"kaavalcircle/internal/validators"
	"kaavalcircle/pkg/logger"
	"kaavalcircle/pkg/metrics"
	"kaavalcircle/pkg/report"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportRenderer turns a complaint into PDF bytes.
type ReportRenderer interface {
	Render(ctx context.Context, complaint *report.Complaint) ([]byte, error)
}

// ComplaintResult is a complaint together with its rendered report. PDF is
// nil and Warning is set when rendering failed.
type ComplaintResult struct {
	Complaint *models.ComplaintView
	PDF       *string
	Warning   string
}

type ComplaintService interface {
	Create(ctx context.Context, citizenID primitive.ObjectID, request *validators.CreateComplaintRequest, files []*UploadedFile) (*ComplaintResult, error)
	List(ctx context.Context, viewer models.Viewer) ([]*models.ComplaintView, error)
	Get(ctx context.Context, viewer models.Viewer, id string) (*models.ComplaintView, error)
	UpdateStatus(ctx context.Context, officerID primitive.ObjectID, id string, request *validators.ComplaintStatusRequest) (*models.ComplaintView, error)
	// Report renders the PDF again for an existing complaint.
	Report(ctx context.Context, viewer models.Viewer, id string) (*ComplaintResult, error)
}

type complaintService struct {
	complaints interfaces.ComplaintRepository
	users      interfaces.UserRepository
	evidence   EvidenceService
	renderer   ReportRenderer
	notifier   Notifier
	logger     *logger.Logger
}

func NewComplaintService(
	complaints interfaces.ComplaintRepository,
	users interfaces.UserRepository,
	evidence EvidenceService,
	renderer ReportRenderer,
	notifier Notifier,
	logger *logger.Logger,
) ComplaintService {
	if notifier == nil {
		notifier = NopNotifier()
	}
	return &complaintService{
		complaints: complaints,
		users:      users,
		evidence:   evidence,
		renderer:   renderer,
		notifier:   notifier,
		logger:     logger,
	}
}

func (s *complaintService) Create(ctx context.Context, citizenID primitive.ObjectID, request *validators.CreateComplaintRequest, files []*UploadedFile) (*ComplaintResult, error) {
	if err := validators.ValidateCreateComplaint(request).Err(); err != nil {
		return nil, err
	}

	citizen, err := requireCitizen(ctx, s.users, citizenID)
	if err != nil {
		return nil, err
	}

	evidence := NormalizeInlineEvidence(request.Evidence)
	stored, err := s.evidence.StoreEvidence(ctx, files)
	if err != nil {
		return nil, err
	}
	evidence = append(evidence, stored...)

	complaint := &models.Complaint{
		CitizenID:   citizenID,
		Description: request.Description,
		Category:    request.Category,
		Location:    models.NewGeoPoint(*request.Location.Latitude, *request.Location.Longitude, request.Location.Address),
		Evidence:    evidence,
		Status:      models.ComplaintStatusPending,
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		s.evidence.Discard(ctx, stored)
		return nil, err
	}

	metrics.RecordComplaintCreated(complaint.Category)
	s.logger.LogCaseEvent("complaint", complaint.ID, "created", map[string]interface{}{
		"citizen_id": citizenID.Hex(),
		"category":   complaint.Category,
		"evidence":   len(complaint.Evidence),
	})

	view := complaintView(complaint, map[primitive.ObjectID]*models.User{citizen.ID: citizen})
	s.notifier.Publish(utils.RoomPolice, utils.EventNewComplaint, view)

	return s.withReport(ctx, view), nil
}

func (s *complaintService) List(ctx context.Context, viewer models.Viewer) ([]*models.ComplaintView, error) {
	complaints, err := s.complaints.List(ctx, scopeFor(viewer))
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(complaints)*2)
	for _, c := range complaints {
		ids = append(ids, caseUserIDs(c.CitizenID, c.AssignedTo)...)
	}
	users, err := loadUsers(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	views := make([]*models.ComplaintView, 0, len(complaints))
	for _, c := range complaints {
		views = append(views, complaintView(c, users))
	}
	return views, nil
}

func (s *complaintService) Get(ctx context.Context, viewer models.Viewer, id string) (*models.ComplaintView, error) {
	complaint, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.IsPolice() && complaint.CitizenID != viewer.UserID {
		return nil, ErrForbidden
	}
	return s.populate(ctx, complaint)
}

func (s *complaintService) UpdateStatus(ctx context.Context, officerID primitive.ObjectID, id string, request *validators.ComplaintStatusRequest) (*models.ComplaintView, error) {
	oid, err := parseCaseID(id)
	if err != nil {
		return nil, err
	}
	if err := validators.ValidateComplaintStatus(request).Err(); err != nil {
		return nil, err
	}

	status := models.ComplaintStatus(request.Status)
	complaint, err := s.complaints.UpdateStatus(ctx, oid, status, officerID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, notFound("Complaint")
		}
		return nil, err
	}

	metrics.RecordComplaintStatusChange(string(status))
	s.logger.LogCaseEvent("complaint", complaint.ID, "status_updated", map[string]interface{}{
		"status":     status,
		"officer_id": officerID.Hex(),
	})

	view, err := s.populate(ctx, complaint)
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(utils.UserRoom(complaint.CitizenID.Hex()), utils.EventComplaintUpdated, view)
	return view, nil
}

func (s *complaintService) Report(ctx context.Context, viewer models.Viewer, id string) (*ComplaintResult, error) {
	view, err := s.Get(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	return s.withReport(ctx, view), nil
}

func (s *complaintService) load(ctx context.Context, id string) (*models.Complaint, error) {
	oid, err := parseCaseID(id)
	if err != nil {
		return nil, err
	}
	complaint, err := s.complaints.GetByID(ctx, oid)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, notFound("Complaint")
		}
		return nil, err
	}
	return complaint, nil
}

func (s *complaintService) populate(ctx context.Context, complaint *models.Complaint) (*models.ComplaintView, error) {
	users, err := loadUsers(ctx, s.users, caseUserIDs(complaint.CitizenID, complaint.AssignedTo))
	if err != nil {
		return nil, err
	}
	return complaintView(complaint, users), nil
}

// withReport renders the PDF. A rendering failure is logged and reported
// through the warning, never as an error.
func (s *complaintService) withReport(ctx context.Context, view *models.ComplaintView) *ComplaintResult {
	result := &ComplaintResult{Complaint: view}
	if s.renderer == nil {
		result.Warning = utils.ErrReportFailed
		return result
	}

	pdf, err := s.renderer.Render(ctx, reportInput(view))
	metrics.RecordReport(err == nil)
	if err != nil {
		s.logger.WithError(err).WithCaseID(view.ID).Error("Failed to render complaint report")
		result.Warning = utils.ErrReportFailed
		return result
	}

	encoded := base64.StdEncoding.EncodeToString(pdf)
	result.PDF = &encoded
	return result
}

func reportInput(view *models.ComplaintView) *report.Complaint {
	rc := &report.Complaint{
		ID:          view.ID.Hex(),
		CreatedAt:   view.CreatedAt,
		Category:    view.Category,
		Status:      string(view.Status),
		Description: view.Description,
		Address:     view.Location.Address,
		Latitude:    view.Location.Latitude(),
		Longitude:   view.Location.Longitude(),
		Evidence:    view.Evidence,
	}
	if view.Citizen != nil {
		rc.CitizenName = view.Citizen.Name
		rc.CitizenPhone = view.Citizen.Phone
	}
	return rc
}
