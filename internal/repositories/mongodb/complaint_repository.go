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

type complaintRepository struct {
	collection *mongo.Collection
}

func NewComplaintRepository(db *mongo.Database) interfaces.ComplaintRepository {
	return &complaintRepository{
		collection: db.Collection(database.ComplaintsCollection),
	}
}

func (r *complaintRepository) Create(ctx context.Context, complaint *models.Complaint) error {
	now := time.Now()
	complaint.ID = primitive.NewObjectID()
	complaint.CreatedAt = now
	complaint.UpdatedAt = now
	if complaint.Status == "" {
		complaint.Status = models.ComplaintStatusPending
	}
	if complaint.Evidence == nil {
		complaint.Evidence = []string{}
	}

	if _, err := r.collection.InsertOne(ctx, complaint); err != nil {
		return fmt.Errorf("failed to create complaint: %w", err)
	}
	return nil
}

func (r *complaintRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Complaint, error) {
	var complaint models.Complaint
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&complaint); err != nil {
		return nil, wrapFindError(err, "complaint")
	}
	return &complaint, nil
}

func (r *complaintRepository) List(ctx context.Context, filter interfaces.CaseFilter) ([]*models.Complaint, error) {
	cursor, err := r.collection.Find(ctx, caseFilter(filter), newestFirst())
	if err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}
	defer cursor.Close(ctx)

	complaints := []*models.Complaint{}
	if err := cursor.All(ctx, &complaints); err != nil {
		return nil, fmt.Errorf("failed to decode complaints: %w", err)
	}
	return complaints, nil
}

func (r *complaintRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.ComplaintStatus, officerID primitive.ObjectID) (*models.Complaint, error) {
	var complaint models.Complaint
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		statusUpdate(string(status), officerID, time.Now()),
		returnUpdated(),
	).Decode(&complaint)
	if err != nil {
		return nil, wrapFindError(err, "complaint")
	}
	return &complaint, nil
}
