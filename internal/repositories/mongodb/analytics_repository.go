package mongodb

import (
	"context"
	"fmt"
	"time"

	"kaavalcircle/internal/models"
	"kaavalcircle/internal/repositories/interfaces"
	"kaavalcircle/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type analyticsRepository struct {
	complaints *mongo.Collection
	sosAlerts  *mongo.Collection
}

func NewAnalyticsRepository(db *mongo.Database) interfaces.AnalyticsRepository {
	return &analyticsRepository{
		complaints: db.Collection(database.ComplaintsCollection),
		sosAlerts:  db.Collection(database.SOSAlertsCollection),
	}
}

func (r *analyticsRepository) CountComplaints(ctx context.Context) (int64, error) {
	count, err := r.complaints.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count complaints: %w", err)
	}
	return count, nil
}

func (r *analyticsRepository) CountComplaintsByStatus(ctx context.Context, status models.ComplaintStatus) (int64, error) {
	count, err := r.complaints.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, fmt.Errorf("failed to count complaints by status: %w", err)
	}
	return count, nil
}

func (r *analyticsRepository) CountSOSByStatus(ctx context.Context, status models.SOSStatus) (int64, error) {
	count, err := r.sosAlerts.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, fmt.Errorf("failed to count sos alerts by status: %w", err)
	}
	return count, nil
}

func (r *analyticsRepository) ClosedComplaintTimings(ctx context.Context) ([]models.ResponseSample, error) {
	opts := options.Find().SetProjection(bson.M{"createdAt": 1, "updatedAt": 1})
	cursor, err := r.complaints.Find(ctx, bson.M{"status": models.ComplaintStatusClosed}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get closed complaints: %w", err)
	}
	defer cursor.Close(ctx)

	samples := []models.ResponseSample{}
	if err := cursor.All(ctx, &samples); err != nil {
		return nil, fmt.Errorf("failed to decode closed complaints: %w", err)
	}
	return samples, nil
}

func (r *analyticsRepository) ComplaintsNear(ctx context.Context, lat, lng, maxDistance float64) ([]*models.Complaint, error) {
	cursor, err := r.complaints.Find(ctx, nearFilter(lat, lng, maxDistance))
	if err != nil {
		return nil, fmt.Errorf("failed to find nearby complaints: %w", err)
	}
	defer cursor.Close(ctx)

	complaints := []*models.Complaint{}
	if err := cursor.All(ctx, &complaints); err != nil {
		return nil, fmt.Errorf("failed to decode nearby complaints: %w", err)
	}
	return complaints, nil
}

func (r *analyticsRepository) CountComplaintsByCategory(ctx context.Context) ([]models.CategoryCount, error) {
	cursor, err := r.complaints.Aggregate(ctx, categoryPipeline())
	if err != nil {
		return nil, fmt.Errorf("failed to get category stats: %w", err)
	}
	defer cursor.Close(ctx)

	counts := []models.CategoryCount{}
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode category stats: %w", err)
	}
	return counts, nil
}

func (r *analyticsRepository) CountComplaintsByMonth(ctx context.Context, since time.Time, timezone string) ([]models.MonthCount, error) {
	cursor, err := r.complaints.Aggregate(ctx, monthlyPipeline(since, timezone))
	if err != nil {
		return nil, fmt.Errorf("failed to get monthly stats: %w", err)
	}
	defer cursor.Close(ctx)

	counts := []models.MonthCount{}
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode monthly stats: %w", err)
	}
	return counts, nil
}
