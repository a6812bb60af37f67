package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SOSStatus string
type SOSPriority string

const (
	SOSStatusActive     SOSStatus = "Active"
	SOSStatusResponding SOSStatus = "Responding"
	SOSStatusResolved   SOSStatus = "Resolved"

	SOSPriorityHigh   SOSPriority = "High"
	SOSPriorityMedium SOSPriority = "Medium"
	SOSPriorityLow    SOSPriority = "Low"
)

var SOSStatuses = []SOSStatus{SOSStatusActive, SOSStatusResponding, SOSStatusResolved}

var SOSPriorities = []SOSPriority{SOSPriorityHigh, SOSPriorityMedium, SOSPriorityLow}

func (s SOSStatus) IsValid() bool {
	for _, status := range SOSStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (p SOSPriority) IsValid() bool {
	for _, priority := range SOSPriorities {
		if p == priority {
			return true
		}
	}
	return false
}

type SOSAlert struct {
	ID          primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	CitizenID   primitive.ObjectID  `json:"citizenId" bson:"citizenId"`
	Description string              `json:"description" bson:"description"`
	Location    GeoPoint            `json:"location" bson:"location"`
	Evidence    []string            `json:"evidence" bson:"evidence"`
	Status      SOSStatus           `json:"status" bson:"status"`
	Priority    SOSPriority         `json:"priority" bson:"priority"`
	AssignedTo  *primitive.ObjectID `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
	CreatedAt   time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt" bson:"updatedAt"`
}

type SOSAlertView struct {
	SOSAlert        `bson:",inline"`
	Citizen         *CitizenSummary `json:"citizen,omitempty" bson:"-"`
	AssignedOfficer *OfficerSummary `json:"assignedOfficer,omitempty" bson:"-"`
}
