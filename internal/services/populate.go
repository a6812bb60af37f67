package services

import (
	"context"
	"errors"
	"strings"

	"kaavalcircle/internal/models"
	"kaavalcircle/internal/repositories/interfaces"
	"kaavalcircle/internal/utils"
	"kaavalcircle/internal/validators"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// loadUsers resolves every referenced user in one query.
func loadUsers(ctx context.Context, repo interfaces.UserRepository, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	seen := make(map[primitive.ObjectID]bool, len(ids))
	unique := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if id.IsZero() || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	return repo.GetByIDs(ctx, unique)
}

func complaintView(c *models.Complaint, users map[primitive.ObjectID]*models.User) *models.ComplaintView {
	view := &models.ComplaintView{Complaint: *c, Citizen: users[c.CitizenID].CitizenSummary()}
	if c.AssignedTo != nil {
		view.AssignedOfficer = users[*c.AssignedTo].OfficerSummary()
	}
	return view
}

func sosView(a *models.SOSAlert, users map[primitive.ObjectID]*models.User) *models.SOSAlertView {
	view := &models.SOSAlertView{SOSAlert: *a, Citizen: users[a.CitizenID].CitizenSummary()}
	if a.AssignedTo != nil {
		view.AssignedOfficer = users[*a.AssignedTo].OfficerSummary()
	}
	return view
}

func caseUserIDs(citizenID primitive.ObjectID, assignedTo *primitive.ObjectID) []primitive.ObjectID {
	ids := []primitive.ObjectID{citizenID}
	if assignedTo != nil {
		ids = append(ids, *assignedTo)
	}
	return ids
}

// scopeFor limits citizens to their own cases. Police see everything.
func scopeFor(viewer models.Viewer) interfaces.CaseFilter {
	if viewer.IsPolice() {
		return interfaces.CaseFilter{}
	}
	id := viewer.UserID
	return interfaces.CaseFilter{CitizenID: &id}
}

// requireCitizen confirms the filing user still exists.
func requireCitizen(ctx context.Context, repo interfaces.UserRepository, id primitive.ObjectID) (*models.User, error) {
	user, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, notFound("User")
		}
		return nil, err
	}
	return user, nil
}

// NormalizeInlineEvidence turns raw base64 attachments into data URLs.
// Data URLs and links to stored objects pass through unchanged.
func NormalizeInlineEvidence(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if strings.HasPrefix(item, "http://") || strings.HasPrefix(item, "https://") {
			out = append(out, item)
			continue
		}
		out = append(out, utils.ToImageDataURL(item))
	}
	return out
}

func parseCaseID(id string) (primitive.ObjectID, error) {
	return validators.ParseObjectID("id", id)
}
