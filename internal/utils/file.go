package utils

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

func GetFileExtension(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

func IsAllowedFileType(filename string, allowedTypes []string) bool {
	ext := strings.TrimPrefix(GetFileExtension(filename), ".")

	for _, allowedType := range allowedTypes {
		if ext == allowedType {
			return true
		}
	}

	return false
}

// IsAllowedEvidence checks both the file extension and the declared mime
// type against the evidence whitelist.
func IsAllowedEvidence(filename, contentType string) bool {
	if !IsAllowedFileType(filename, AllowedEvidenceTypes) {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	mediaType = strings.ToLower(mediaType)
	for _, allowed := range allowedEvidenceMimes {
		if mediaType == allowed {
			return true
		}
	}
	return false
}

var allowedEvidenceMimes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"application/pdf",
	"video/mp4",
	"video/quicktime",
	"video/mov",
	"video/avi",
	"video/x-msvideo",
}

// GenerateObjectKey builds "<prefix>/<unix-ms>-<uuid><ext>".
func GenerateObjectKey(prefix, originalFilename string, now time.Time) string {
	ext := GetFileExtension(originalFilename)
	return fmt.Sprintf("%s/%d-%s%s", prefix, now.UnixMilli(), uuid.NewString(), ext)
}

func GetContentType(filename string) string {
	ext := GetFileExtension(filename)

	contentTypes := map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".gif":  "image/gif",
		".webp": "image/webp",
		".pdf":  "application/pdf",
		".mp4":  "video/mp4",
		".avi":  "video/x-msvideo",
		".mov":  "video/quicktime",
	}

	if contentType, exists := contentTypes[ext]; exists {
		return contentType
	}

	return "application/octet-stream"
}
