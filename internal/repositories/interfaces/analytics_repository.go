package interfaces

import (
	"context"
	"time"

	"kaavalcircle/internal/models"
)

// AnalyticsRepository runs the read-only aggregations behind the police dashboard.
type AnalyticsRepository interface {
	CountComplaints(ctx context.Context) (int64, error)
	CountComplaintsByStatus(ctx context.Context, status models.ComplaintStatus) (int64, error)
	CountSOSByStatus(ctx context.Context, status models.SOSStatus) (int64, error)
	ClosedComplaintTimings(ctx context.Context) ([]models.ResponseSample, error)

	// ComplaintsNear returns complaints within maxDistance meters, nearest first.
	ComplaintsNear(ctx context.Context, lat, lng, maxDistance float64) ([]*models.Complaint, error)
	CountComplaintsByCategory(ctx context.Context) ([]models.CategoryCount, error)
	// CountComplaintsByMonth buckets complaints created since the given time
	// by calendar month in the named timezone.
	CountComplaintsByMonth(ctx context.Context, since time.Time, timezone string) ([]models.MonthCount, error)
}
