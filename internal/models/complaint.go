package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ComplaintStatus string

const (
	ComplaintStatusPending    ComplaintStatus = "Pending"
	ComplaintStatusInProgress ComplaintStatus = "In Progress"
	ComplaintStatusClosed     ComplaintStatus = "Closed"
)

var ComplaintStatuses = []ComplaintStatus{
	ComplaintStatusPending,
	ComplaintStatusInProgress,
	ComplaintStatusClosed,
}

func (s ComplaintStatus) IsValid() bool {
	for _, status := range ComplaintStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Complaint struct {
	ID          primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	CitizenID   primitive.ObjectID  `json:"citizenId" bson:"citizenId"`
	Description string              `json:"description" bson:"description"`
	Category    string              `json:"category" bson:"category"`
	Location    GeoPoint            `json:"location" bson:"location"`
	Evidence    []string            `json:"evidence" bson:"evidence"`
	Status      ComplaintStatus     `json:"status" bson:"status"`
	AssignedTo  *primitive.ObjectID `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
	CreatedAt   time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// ComplaintView is a complaint with its referenced users resolved.
type ComplaintView struct {
	Complaint       `bson:",inline"`
	Citizen         *CitizenSummary `json:"citizen,omitempty" bson:"-"`
	AssignedOfficer *OfficerSummary `json:"assignedOfficer,omitempty" bson:"-"`
}

// ResponseTime is the time between filing and the last status change.
func (c *Complaint) ResponseTime() time.Duration {
	return c.UpdatedAt.Sub(c.CreatedAt)
}
