package validators

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"kaavalcircle/internal/models"
)

var validate *validator.Validate

var phoneRegex = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

func init() {
	validate = validator.New()

	// Report json names so field errors line up with request payloads.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	validate.RegisterValidation("object_id", validateObjectID)
	validate.RegisterValidation("phone_number", validatePhoneNumber)
	validate.RegisterValidation("latitude_value", validateLatitude)
	validate.RegisterValidation("longitude_value", validateLongitude)
	validate.RegisterValidation("complaint_status", validateComplaintStatus)
	validate.RegisterValidation("sos_status", validateSOSStatus)
	validate.RegisterValidation("sos_priority", validateSOSPriority)
}

var (
	ErrInvalidObjectID    = errors.New("invalid object ID format")
	ErrInvalidPhoneNumber = errors.New("invalid phone number format")
	ErrInvalidCoordinates = errors.New("invalid GPS coordinates")
)

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag,omitempty"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

// Err returns v as an error, or nil when there are no failures.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func NewValidationError(field, message string) ValidationErrors {
	return ValidationErrors{{Field: field, Message: message}}
}

// ValidateStruct validates a struct and returns detailed errors
func ValidateStruct(s interface{}) ValidationErrors {
	var validationErrors ValidationErrors

	err := validate.Struct(s)
	if err != nil {
		var fieldErrors validator.ValidationErrors
		if !errors.As(err, &fieldErrors) {
			return ValidationErrors{{Field: "request", Message: err.Error()}}
		}
		for _, err := range fieldErrors {
			validationErrors = append(validationErrors, ValidationError{
				Field:   fieldPath(err),
				Tag:     err.Tag(),
				Value:   fieldValue(err),
				Message: getErrorMessage(err),
			})
		}
	}

	return validationErrors
}

// fieldPath drops the root struct name from the namespace, leaving
// e.g. "location.latitude".
func fieldPath(err validator.FieldError) string {
	ns := err.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return err.Field()
}

func fieldValue(err validator.FieldError) string {
	if err.Field() == "password" {
		return ""
	}
	v := reflect.ValueOf(err.Value())
	if !v.IsValid() || (v.Kind() == reflect.Ptr && v.IsNil()) {
		return ""
	}
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	return fmt.Sprintf("%v", v.Interface())
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required", "required_if", "required_without":
		return fmt.Sprintf("%s is required", err.Field())
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
	case "object_id":
		return "Invalid ID format"
	case "phone_number":
		return "Invalid phone number format"
	case "latitude_value":
		return "latitude must be a number between -90 and 90"
	case "longitude_value":
		return "longitude must be a number between -180 and 180"
	case "complaint_status":
		return fmt.Sprintf("status must be one of: %s", joinEnum(models.ComplaintStatuses))
	case "sos_status":
		return fmt.Sprintf("status must be one of: %s", joinEnum(models.SOSStatuses))
	case "sos_priority":
		return fmt.Sprintf("priority must be one of: %s", joinEnum(models.SOSPriorities))
	default:
		return fmt.Sprintf("Validation failed for %s", err.Field())
	}
}

func joinEnum[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// Custom validation functions
func validateObjectID(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Let required tag handle empty values
	}
	_, err := primitive.ObjectIDFromHex(value)
	return err == nil
}

func validatePhoneNumber(fl validator.FieldLevel) bool {
	phone := fl.Field().String()
	if phone == "" {
		return true
	}
	return phoneRegex.MatchString(strings.ReplaceAll(phone, " ", ""))
}

func validateLatitude(fl validator.FieldLevel) bool {
	lat := fl.Field().Float()
	return lat >= -90 && lat <= 90
}

func validateLongitude(fl validator.FieldLevel) bool {
	lng := fl.Field().Float()
	return lng >= -180 && lng <= 180
}

func validateComplaintStatus(fl validator.FieldLevel) bool {
	return models.ComplaintStatus(fl.Field().String()).IsValid()
}

func validateSOSStatus(fl validator.FieldLevel) bool {
	return models.SOSStatus(fl.Field().String()).IsValid()
}

func validateSOSPriority(fl validator.FieldLevel) bool {
	priority := fl.Field().String()
	if priority == "" {
		return true
	}
	return models.SOSPriority(priority).IsValid()
}

// ParseObjectID converts a path parameter into an ObjectID, reporting a
// field error when it is malformed.
func ParseObjectID(field, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, NewValidationError(field, "Invalid ID format")
	}
	return oid, nil
}

// ParseCoordinate parses a latitude or longitude supplied as text.
func ParseCoordinate(field, raw string, limit float64) (float64, *ValidationError) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, &ValidationError{Field: field, Tag: "required", Message: fmt.Sprintf("%s is required", field)}
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, &ValidationError{Field: field, Tag: "numeric", Value: raw, Message: fmt.Sprintf("%s must be a number", field)}
	}
	if value < -limit || value > limit {
		return 0, &ValidationError{Field: field, Tag: "range", Value: raw, Message: fmt.Sprintf("%s must be between %v and %v", field, -limit, limit)}
	}
	return value, nil
}

func SanitizeInput(input string) string {
	htmlRegex := regexp.MustCompile(`<[^>]*>`)
	cleaned := htmlRegex.ReplaceAllString(input, "")
	return strings.TrimSpace(cleaned)
}
