package validators

import (
	"strings"
)

type CreateSOSRequest struct {
	Description string          `json:"description" validate:"required,max=2000"`
	Location    LocationRequest `json:"location"`
	Priority    string          `json:"priority" validate:"omitempty,sos_priority"`
	Evidence    []string        `json:"evidence" validate:"omitempty,max=10"`
}

type SOSStatusRequest struct {
	Status string `json:"status" validate:"required,sos_status"`
}

// ValidateCreateSOS validates an alert. Unlike complaints the address is
// optional since it can be filled in by reverse geocoding.
func ValidateCreateSOS(req *CreateSOSRequest) ValidationErrors {
	req.Description = SanitizeInput(req.Description)
	req.Priority = strings.TrimSpace(req.Priority)
	req.Location.Normalize()
	return ValidateStruct(req)
}

func ValidateSOSStatus(req *SOSStatusRequest) ValidationErrors {
	req.Status = strings.TrimSpace(req.Status)
	return ValidateStruct(req)
}
