package interfaces

import (
	"context"

	"kaavalcircle/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SOSRepository interface {
	Create(ctx context.Context, alert *models.SOSAlert) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.SOSAlert, error)
	List(ctx context.Context, filter CaseFilter) ([]*models.SOSAlert, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.SOSStatus, officerID primitive.ObjectID) (*models.SOSAlert, error)
}
