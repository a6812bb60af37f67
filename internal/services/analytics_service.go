package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"kaavalcircle/internal/models"
	"kaavalcircle/internal/repositories/interfaces"
	"kaavalcircle/internal/utils"
	"kaavalcircle/pkg/logger"
)

// AnalyticsService computes the police dashboard figures. Every call is a
// fresh read; nothing is cached.
type AnalyticsService interface {
	GetDashboardStats(ctx context.Context) (*models.DashboardStats, error)
	GetHotspots(ctx context.Context, lat, lng float64) ([]models.Hotspot, error)
	GetCategoryBreakdown(ctx context.Context) ([]models.CategoryShare, error)
	GetMonthlyTrends(ctx context.Context) ([]models.MonthlyTrend, error)
}

type analyticsService struct {
	repo     interfaces.AnalyticsRepository
	location *time.Location
	now      func() time.Time
	logger   *logger.Logger
}

func NewAnalyticsService(repo interfaces.AnalyticsRepository, location *time.Location, log *logger.Logger) AnalyticsService {
	if location == nil {
		location = time.UTC
	}
	return &analyticsService{
		repo:     repo,
		location: location,
		now:      time.Now,
		logger:   log,
	}
}

func (s *analyticsService) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	total, err := s.repo.CountComplaints(ctx)
	if err != nil {
		return nil, err
	}
	activeSOS, err := s.repo.CountSOSByStatus(ctx, models.SOSStatusActive)
	if err != nil {
		return nil, err
	}
	pending, err := s.repo.CountComplaintsByStatus(ctx, models.ComplaintStatusPending)
	if err != nil {
		return nil, err
	}
	closed, err := s.repo.ClosedComplaintTimings(ctx)
	if err != nil {
		return nil, err
	}

	return &models.DashboardStats{
		TotalComplaints:       total,
		ActiveSOSCount:        activeSOS,
		PendingComplaintCount: pending,
		AvgResponseTimeHours:  AverageResponseHours(closed),
	}, nil
}

func (s *analyticsService) GetHotspots(ctx context.Context, lat, lng float64) ([]models.Hotspot, error) {
	complaints, err := s.repo.ComplaintsNear(ctx, lat, lng, utils.HotspotRadiusMeters)
	if err != nil {
		return nil, err
	}
	hotspots := BuildHotspots(complaints)
	s.logger.WithFields(map[string]interface{}{
		"complaints": len(complaints),
		"hotspots":   len(hotspots),
	}).Debug("Computed hotspots")
	return hotspots, nil
}

func (s *analyticsService) GetCategoryBreakdown(ctx context.Context) ([]models.CategoryShare, error) {
	counts, err := s.repo.CountComplaintsByCategory(ctx)
	if err != nil {
		return nil, err
	}
	return CategoryBreakdown(counts), nil
}

func (s *analyticsService) GetMonthlyTrends(ctx context.Context) ([]models.MonthlyTrend, error) {
	now := s.now()
	counts, err := s.repo.CountComplaintsByMonth(ctx, TrendWindowStart(now, s.location), s.location.String())
	if err != nil {
		return nil, err
	}
	return MonthlyTrends(now, s.location, counts), nil
}

// AverageResponseHours is the mean filing-to-close time in hours with two
// decimals, "0.00" when nothing has been closed.
func AverageResponseHours(samples []models.ResponseSample) string {
	if len(samples) == 0 {
		return "0.00"
	}

	var total time.Duration
	for _, sample := range samples {
		total += sample.UpdatedAt.Sub(sample.CreatedAt)
	}
	hours := total.Hours() / float64(len(samples))
	return fmt.Sprintf("%.2f", hours)
}

// BuildHotspots groups complaints that share exactly the same coordinates.
// Nearby but distinct points stay separate. The result is ordered by count,
// largest first, with ties kept in discovery order.
func BuildHotspots(complaints []*models.Complaint) []models.Hotspot {
	hotspots := []models.Hotspot{}
	index := make(map[string]int)

	for _, complaint := range complaints {
		lat := complaint.Location.Latitude()
		lng := complaint.Location.Longitude()
		key := utils.CoordinateKey(lng, lat)

		i, ok := index[key]
		if !ok {
			address := complaint.Location.Address
			if address == "" {
				address = fmt.Sprintf("Location %d", len(hotspots)+1)
			}
			hotspots = append(hotspots, models.Hotspot{
				ID:         key,
				Lat:        lat,
				Lng:        lng,
				Address:    address,
				Categories: make(map[string]int),
			})
			i = len(hotspots) - 1
			index[key] = i
		}

		hotspots[i].Count++
		hotspots[i].Categories[complaint.Category]++
	}

	sort.SliceStable(hotspots, func(a, b int) bool {
		return hotspots[a].Count > hotspots[b].Count
	})
	return hotspots
}

// CategoryBreakdown converts raw per-category counts into rounded
// percentages of the total. Percentages are not normalized to sum to 100.
func CategoryBreakdown(counts []models.CategoryCount) []models.CategoryShare {
	var total int64
	for _, c := range counts {
		total += c.Count
	}

	shares := []models.CategoryShare{}
	if total == 0 {
		return shares
	}

	for _, c := range counts {
		if c.Count == 0 {
			continue
		}
		percent := math.Floor(float64(c.Count)*100/float64(total) + 0.5)
		shares = append(shares, models.CategoryShare{
			Name:    c.Name,
			Count:   c.Count,
			Percent: int(percent),
		})
	}

	sort.Slice(shares, func(a, b int) bool {
		if shares[a].Count != shares[b].Count {
			return shares[a].Count > shares[b].Count
		}
		return shares[a].Name < shares[b].Name
	})
	return shares
}

// TrendWindowStart is midnight on the first day of the oldest month in the trend.
func TrendWindowStart(now time.Time, location *time.Location) time.Time {
	return firstOfMonth(now, location).AddDate(0, -(utils.TrendMonths - 1), 0)
}

// MonthlyTrends lays the counts out over the last six calendar months,
// oldest first. Months with no complaints get a zero count and only the
// last entry is marked current.
func MonthlyTrends(now time.Time, location *time.Location, counts []models.MonthCount) []models.MonthlyTrend {
	type yearMonth struct {
		year  int
		month time.Month
	}
	byMonth := make(map[yearMonth]int64, len(counts))
	for _, c := range counts {
		byMonth[yearMonth{c.Year, time.Month(c.Month)}] += c.Count
	}

	start := firstOfMonth(now, location)
	trends := make([]models.MonthlyTrend, 0, utils.TrendMonths)
	for i := utils.TrendMonths - 1; i >= 0; i-- {
		month := start.AddDate(0, -i, 0)
		trends = append(trends, models.MonthlyTrend{
			Month:   month.Month().String(),
			Year:    month.Year(),
			Count:   byMonth[yearMonth{month.Year(), month.Month()}],
			Current: i == 0,
		})
	}
	return trends
}

func firstOfMonth(t time.Time, location *time.Location) time.Time {
	t = t.In(location)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, location)
}
