package models

import "time"

type DashboardStats struct {
	TotalComplaints       int64 `json:"totalComplaints"`
	ActiveSOSCount        int64 `json:"activeSOSCount"`
	PendingComplaintCount int64 `json:"pendingComplaintCount"`
	// AvgResponseTimeHours is formatted with two decimals, e.g. "5.00".
	AvgResponseTimeHours string `json:"avgResponseTimeHours"`
}

type Hotspot struct {
	ID         string         `json:"id"`
	Lat        float64        `json:"lat"`
	Lng        float64        `json:"lng"`
	Address    string         `json:"address"`
	Count      int            `json:"count"`
	Categories map[string]int `json:"categories"`
}

type CategoryCount struct {
	Name  string `bson:"_id"`
	Count int64  `bson:"count"`
}

type CategoryShare struct {
	Name    string `json:"name"`
	Count   int64  `json:"count"`
	Percent int    `json:"percent"`
}

type MonthCount struct {
	Year  int   `bson:"year"`
	Month int   `bson:"month"`
	Count int64 `bson:"count"`
}

type MonthlyTrend struct {
	Month   string `json:"month"`
	Year    int    `json:"year"`
	Count   int64  `json:"count"`
	Current bool   `json:"current"`
}

// ResponseSample is the pair of timestamps needed to compute response time
// for a closed complaint.
type ResponseSample struct {
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}
