package mongodb

import (
	"context"
	"fmt"
	"time"

	"kaavalcircle/internal/models"
	"kaavalcircle/internal/repositories/interfaces"
	"kaavalcircle/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type sosRepository struct {
	collection *mongo.Collection
}

func NewSOSRepository(db *mongo.Database) interfaces.SOSRepository {
	return &sosRepository{
		collection: db.Collection(database.SOSAlertsCollection),
	}
}

func (r *sosRepository) Create(ctx context.Context, alert *models.SOSAlert) error {
	now := time.Now()
	alert.ID = primitive.NewObjectID()
	alert.CreatedAt = now
	alert.UpdatedAt = now
	if alert.Status == "" {
		alert.Status = models.SOSStatusActive
	}
	if alert.Priority == "" {
		alert.Priority = models.SOSPriorityHigh
	}
	if alert.Evidence == nil {
		alert.Evidence = []string{}
	}

	if _, err := r.collection.InsertOne(ctx, alert); err != nil {
		return fmt.Errorf("failed to create sos alert: %w", err)
	}
	return nil
}

func (r *sosRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.SOSAlert, error) {
	var alert models.SOSAlert
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&alert); err != nil {
		return nil, wrapFindError(err, "sos alert")
	}
	return &alert, nil
}

func (r *sosRepository) List(ctx context.Context, filter interfaces.CaseFilter) ([]*models.SOSAlert, error) {
	cursor, err := r.collection.Find(ctx, caseFilter(filter), newestFirst())
	if err != nil {
		return nil, fmt.Errorf("failed to list sos alerts: %w", err)
	}
	defer cursor.Close(ctx)

	alerts := []*models.SOSAlert{}
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, fmt.Errorf("failed to decode sos alerts: %w", err)
	}
	return alerts, nil
}

func (r *sosRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.SOSStatus, officerID primitive.ObjectID) (*models.SOSAlert, error) {
	var alert models.SOSAlert
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		statusUpdate(string(status), officerID, time.Now()),
		returnUpdated(),
	).Decode(&alert)
	if err != nil {
		return nil, wrapFindError(err, "sos alert")
	}
	return &alert, nil
}
