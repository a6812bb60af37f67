package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserType string

const (
	UserTypeCitizen UserType = "citizen"
	UserTypePolice  UserType = "police"
)

func (t UserType) IsValid() bool {
	return t == UserTypeCitizen || t == UserTypePolice
}

type User struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserType    UserType           `json:"userType" bson:"userType"`
	Name        string             `json:"name" bson:"name"`
	Phone       string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Email       string             `json:"email,omitempty" bson:"email,omitempty"`
	Address     string             `json:"address,omitempty" bson:"address,omitempty"`
	Age         int                `json:"age,omitempty" bson:"age,omitempty"`
	AadharNo    string             `json:"aadharNo,omitempty" bson:"aadharNo,omitempty"`
	Gender      string             `json:"gender,omitempty" bson:"gender,omitempty"`
	Photo       string             `json:"photo,omitempty" bson:"photo,omitempty"`
	StationName string             `json:"stationName,omitempty" bson:"stationName,omitempty"`
	BatchNo     string             `json:"batchNo,omitempty" bson:"batchNo,omitempty"`
	Password    string             `json:"-" bson:"password"`
	LastLoginAt *time.Time         `json:"lastLoginAt,omitempty" bson:"lastLoginAt,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (u *User) IsPolice() bool {
	return u.UserType == UserTypePolice
}

// LoginIdentifier is the phone number for citizens and the batch number
// for police officers.
func (u *User) LoginIdentifier() string {
	if u.IsPolice() {
		return u.BatchNo
	}
	return u.Phone
}

type CitizenSummary struct {
	ID      primitive.ObjectID `json:"id"`
	Name    string             `json:"name"`
	Phone   string             `json:"phone"`
	Address string             `json:"address"`
}

type OfficerSummary struct {
	ID          primitive.ObjectID `json:"id"`
	Name        string             `json:"name"`
	StationName string             `json:"stationName"`
}

func (u *User) CitizenSummary() *CitizenSummary {
	if u == nil {
		return nil
	}
	return &CitizenSummary{ID: u.ID, Name: u.Name, Phone: u.Phone, Address: u.Address}
}

func (u *User) OfficerSummary() *OfficerSummary {
	if u == nil {
		return nil
	}
	return &OfficerSummary{ID: u.ID, Name: u.Name, StationName: u.StationName}
}

// Viewer is the authenticated caller of a request.
type Viewer struct {
	UserID   primitive.ObjectID
	UserType UserType
}

func (v Viewer) IsPolice() bool {
	return v.UserType == UserTypePolice
}
