package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"kaavalcircle/internal/models"
	"kaavalcircle/internal/repositories/interfaces"
	"kaavalcircle/internal/utils"
	"kaavalcircle/internal/validators"
	"kaavalcircle/pkg/logger"
	"kaavalcircle/pkg/maps"
	"kaavalcircle/pkg/metrics"
	"kaavalcircle/pkg/sms"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// placeholderAddress is what the mobile client sends before it has an address.
const placeholderAddress = "Current Location"

type SOSService interface {
	Create(ctx context.Context, citizenID primitive.ObjectID, request *validators.CreateSOSRequest) (*models.SOSAlertView, error)
	List(ctx context.Context, viewer models.Viewer) ([]*models.SOSAlertView, error)
	UpdateStatus(ctx context.Context, officerID primitive.ObjectID, id string, request *validators.SOSStatusRequest) (*models.SOSAlertView, error)
}

// SOSOptions wires the optional collaborators of the SOS service. A nil
// Geocoder skips address lookup and a nil SMS provider skips dispatch texts.
type SOSOptions struct {
	Geocoder        maps.Geocoder
	GeocodeTimeout  time.Duration
	SMS             sms.Provider
	DispatchNumbers []string
	SMSTimeout      time.Duration
}

type sosService struct {
	alerts   interfaces.SOSRepository
	users    interfaces.UserRepository
	options  SOSOptions
	notifier Notifier
	logger   *logger.Logger
	// dispatches tracks in-flight SMS fan-outs.
	dispatches sync.WaitGroup
}

func NewSOSService(
	alerts interfaces.SOSRepository,
	users interfaces.UserRepository,
	options SOSOptions,
	notifier Notifier,
	logger *logger.Logger,
) SOSService {
	if options.GeocodeTimeout <= 0 {
		options.GeocodeTimeout = 3 * time.Second
	}
	if options.SMSTimeout <= 0 {
		options.SMSTimeout = 10 * time.Second
	}
	if notifier == nil {
		notifier = NopNotifier()
	}
	return &sosService{
		alerts:   alerts,
		users:    users,
		options:  options,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *sosService) Create(ctx context.Context, citizenID primitive.ObjectID, request *validators.CreateSOSRequest) (*models.SOSAlertView, error) {
	if err := validators.ValidateCreateSOS(request).Err(); err != nil {
		return nil, err
	}

	citizen, err := requireCitizen(ctx, s.users, citizenID)
	if err != nil {
		return nil, err
	}

	lat, lng := *request.Location.Latitude, *request.Location.Longitude
	address := request.Location.Address
	if address == "" || address == placeholderAddress {
		if resolved := s.reverseGeocode(ctx, lat, lng); resolved != "" {
			address = resolved
		}
	}

	priority := models.SOSPriority(request.Priority)
	if priority == "" {
		priority = models.SOSPriorityHigh
	}

	alert := &models.SOSAlert{
		CitizenID:   citizenID,
		Description: request.Description,
		Location:    models.NewGeoPoint(lat, lng, address),
		Evidence:    NormalizeInlineEvidence(request.Evidence),
		Status:      models.SOSStatusActive,
		Priority:    priority,
	}
	if err := s.alerts.Create(ctx, alert); err != nil {
		return nil, err
	}

	metrics.RecordSOSCreated(string(priority))
	s.logger.LogCaseEvent("sos", alert.ID, "created", map[string]interface{}{
		"citizen_id": citizenID.Hex(),
		"priority":   priority,
	})

	view := sosView(alert, map[primitive.ObjectID]*models.User{citizen.ID: citizen})
	s.notifier.Publish(utils.RoomPolice, utils.EventNewSOSAlert, view)

	if priority == models.SOSPriorityHigh {
		s.dispatch(view)
	}
	return view, nil
}

func (s *sosService) List(ctx context.Context, viewer models.Viewer) ([]*models.SOSAlertView, error) {
	alerts, err := s.alerts.List(ctx, scopeFor(viewer))
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(alerts)*2)
	for _, a := range alerts {
		ids = append(ids, caseUserIDs(a.CitizenID, a.AssignedTo)...)
	}
	users, err := loadUsers(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	views := make([]*models.SOSAlertView, 0, len(alerts))
	for _, a := range alerts {
		views = append(views, sosView(a, users))
	}
	return views, nil
}

func (s *sosService) UpdateStatus(ctx context.Context, officerID primitive.ObjectID, id string, request *validators.SOSStatusRequest) (*models.SOSAlertView, error) {
	oid, err := parseCaseID(id)
	if err != nil {
		return nil, err
	}
	if err := validators.ValidateSOSStatus(request).Err(); err != nil {
		return nil, err
	}

	status := models.SOSStatus(request.Status)
	alert, err := s.alerts.UpdateStatus(ctx, oid, status, officerID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, notFound("SOS alert")
		}
		return nil, err
	}

	metrics.RecordSOSStatusChange(string(status))
	s.logger.LogCaseEvent("sos", alert.ID, "status_updated", map[string]interface{}{
		"status":     status,
		"officer_id": officerID.Hex(),
	})

	users, err := loadUsers(ctx, s.users, caseUserIDs(alert.CitizenID, alert.AssignedTo))
	if err != nil {
		return nil, err
	}
	view := sosView(alert, users)
	s.notifier.Publish(utils.RoomPolice, utils.EventSOSStatusUpdated, view)
	s.notifier.Publish(utils.UserRoom(alert.CitizenID.Hex()), utils.EventSOSStatusUpdated, view)
	return view, nil
}

// reverseGeocode is best effort; failures leave the address as sent.
func (s *sosService) reverseGeocode(ctx context.Context, lat, lng float64) string {
	if s.options.Geocoder == nil {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, s.options.GeocodeTimeout)
	defer cancel()

	resp, err := s.options.Geocoder.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		s.logger.WithError(err).Debug("Reverse geocoding failed")
		return ""
	}
	return resp.BestAddress()
}

// dispatch texts the configured dispatch numbers in the background. It
// never affects the request that raised the alert.
func (s *sosService) dispatch(alert *models.SOSAlertView) {
	if s.options.SMS == nil || len(s.options.DispatchNumbers) == 0 {
		return
	}

	message := dispatchMessage(alert)
	requests := make([]*sms.SMSRequest, 0, len(s.options.DispatchNumbers))
	for _, number := range s.options.DispatchNumbers {
		requests = append(requests, &sms.SMSRequest{To: number, Message: message, Type: "transactional"})
	}

	provider := s.options.SMS
	log := s.logger.WithCaseID(alert.ID)
	s.dispatches.Add(1)
	go func() {
		defer s.dispatches.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.options.SMSTimeout)
		defer cancel()

		responses, err := sms.SendBulk(ctx, provider, requests)
		for _, resp := range responses {
			metrics.RecordSMS(provider.Name(), resp != nil && resp.Error == "")
		}
		if err != nil {
			log.WithError(err).Warn("SOS dispatch SMS failed")
			return
		}
		log.WithField("recipients", len(requests)).Info("SOS dispatch SMS sent")
	}()
}

func dispatchMessage(alert *models.SOSAlertView) string {
	description := alert.Description
	if runes := []rune(description); len(runes) > 120 {
		description = string(runes[:120]) + "..."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SOS %s: %s", alert.Priority, description)
	if alert.Location.Address != "" {
		fmt.Fprintf(&b, " at %s", alert.Location.Address)
	}
	fmt.Fprintf(&b, " (%.5f, %.5f)", alert.Location.Latitude(), alert.Location.Longitude())
	if alert.Citizen != nil {
		fmt.Fprintf(&b, ". Citizen: %s %s", alert.Citizen.Name, alert.Citizen.Phone)
	}
	return b.String()
}
