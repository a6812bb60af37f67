package interfaces

import (
	"context"

	"kaavalcircle/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CaseFilter narrows a complaint or SOS listing. A nil CitizenID lists everything.
type CaseFilter struct {
	CitizenID *primitive.ObjectID
}

type ComplaintRepository interface {
	Create(ctx context.Context, complaint *models.Complaint) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Complaint, error)
	// List returns matching complaints newest first.
	List(ctx context.Context, filter CaseFilter) ([]*models.Complaint, error)
	// UpdateStatus sets status and assignee and returns the updated document.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.ComplaintStatus, officerID primitive.ObjectID) (*models.Complaint, error)
}
