package validators

import (
	"strings"
)

// LocationRequest accepts either flat latitude/longitude or the
// {coordinates:{lat,lng}} shape sent by the mobile client.
type LocationRequest struct {
	Latitude    *float64            `json:"latitude" validate:"required,latitude_value"`
	Longitude   *float64            `json:"longitude" validate:"required,longitude_value"`
	Coordinates *CoordinatesRequest `json:"coordinates,omitempty" validate:"-"`
	Address     string              `json:"address" validate:"max=500"`
}

type CoordinatesRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// Normalize folds the nested coordinates shape into Latitude/Longitude.
func (l *LocationRequest) Normalize() {
	if l.Coordinates != nil {
		if l.Latitude == nil {
			l.Latitude = l.Coordinates.Lat
		}
		if l.Longitude == nil {
			l.Longitude = l.Coordinates.Lng
		}
	}
	l.Address = strings.TrimSpace(l.Address)
}

type CreateComplaintRequest struct {
	Description string          `json:"description" validate:"required,max=5000"`
	Category    string          `json:"category" validate:"required,max=100"`
	Location    LocationRequest `json:"location"`
	Evidence    []string        `json:"evidence" validate:"omitempty,max=10"`
}

type ComplaintStatusRequest struct {
	Status string `json:"status" validate:"required,complaint_status"`
}

func ValidateCreateComplaint(req *CreateComplaintRequest) ValidationErrors {
	req.Description = SanitizeInput(req.Description)
	req.Category = strings.TrimSpace(req.Category)
	req.Location.Normalize()

	errors := ValidateStruct(req)
	if req.Location.Address == "" {
		errors = append(errors, ValidationError{
			Field:   "location.address",
			Tag:     "required",
			Message: "address is required",
		})
	}
	return errors
}

func ValidateComplaintStatus(req *ComplaintStatusRequest) ValidationErrors {
	req.Status = strings.TrimSpace(req.Status)
	return ValidateStruct(req)
}
