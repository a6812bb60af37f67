package utils

import "time"

// Application Constants
const (
	AppName    = "kaavalcircle"
	AppVersion = "1.0.0"

	// Authentication
	JWTAccessTokenTTL = 30 * 24 * time.Hour

	// Evidence
	MaxEvidenceSize  = 10 * 1024 * 1024 // 10MB
	MaxEvidenceFiles = 10
	MaxPhotoSize     = 5 * 1024 * 1024
	MaxPhotoEdge     = 512

	// Analytics
	HotspotRadiusMeters = 10000
	TrendMonths         = 6
)

// Error codes carried in the response envelope.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeBadRequest      = "BAD_REQUEST"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeInternal        = "INTERNAL_ERROR"
)

// Error Messages
const (
	ErrInvalidCredentials = "invalid credentials"
	ErrUserNotFound       = "User not found"
	ErrUserExists         = "user already exists"
	ErrInvalidToken       = "invalid token"
	ErrMissingToken       = "authorization token required"
	ErrInternalServer     = "internal server error"
	ErrUnauthorized       = "unauthorized"
	ErrForbidden          = "forbidden"
	ErrValidationFailed   = "validation failed"
	ErrTooManyAttempts    = "too many failed login attempts, try again later"
	ErrRateLimited        = "rate limit exceeded"
	ErrEvidenceRejected   = "Only images, PDF, or videos are allowed"
	ErrReportFailed       = "Complaint saved successfully but PDF generation failed. Please try downloading later."
)

// Cache Keys
const (
	CacheUserPrefix         = "user:"
	CacheLoginAttemptPrefix = "login_attempts:"
)

// Real-time event names
const (
	EventNewSOSAlert      = "new_sos_alert"
	EventSOSStatusUpdated = "sos_status_updated"
	EventNewComplaint     = "new_complaint"
	EventComplaintUpdated = "complaint_updated"
	RoomPolice            = "police"
	RoomUserPrefix        = "user_"
)

// Evidence upload types
var (
	AllowedEvidenceTypes = []string{"jpeg", "jpg", "png", "pdf", "mp4", "mov", "avi"}
	AllowedPhotoTypes    = []string{"jpeg", "jpg", "png"}
)

// UserRoom is the room every connection of a user joins.
func UserRoom(userID string) string {
	return RoomUserPrefix + userID
}
