package interfaces

import (
	"context"

	"kaavalcircle/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// GetByIDs returns the users that exist, keyed by id. Unknown ids are skipped.
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error)
	// GetByIdentifier looks up a citizen by phone or an officer by batch number.
	GetByIdentifier(ctx context.Context, userType models.UserType, identifier string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error
}
