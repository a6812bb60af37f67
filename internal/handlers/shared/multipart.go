package handlers

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"kaavalcircle/internal/services"
	"kaavalcircle/internal/utils"
	"kaavalcircle/internal/validators"

	"github.com/gin-gonic/gin"
)

// Form memory above this spills to temporary files.
const maxMultipartMemory = 32 << 20

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// openedFiles keeps the multipart files handed to a service open until the
// request is done with them.
type openedFiles struct {
	files   []*services.UploadedFile
	closers []multipart.File
}

func (o *openedFiles) Close() {
	for _, f := range o.closers {
		f.Close()
	}
}

// openFormFiles opens every file uploaded under field.
func openFormFiles(c *gin.Context, field string) (*openedFiles, error) {
	opened := &openedFiles{}

	form, err := c.MultipartForm()
	if err != nil {
		return opened, err
	}

	for _, header := range form.File[field] {
		file, err := header.Open()
		if err != nil {
			opened.Close()
			return &openedFiles{}, err
		}
		opened.closers = append(opened.closers, file)
		opened.files = append(opened.files, &services.UploadedFile{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Reader:      file,
		})
	}
	return opened, nil
}

// parseMultipart reads the form, answering 400 when it is malformed or
// larger than the server accepts.
func parseMultipart(c *gin.Context) bool {
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, utils.CodeBadRequest, "Upload too large")
			return false
		}
		utils.BadRequestResponse(c, "Invalid multipart form")
		return false
	}
	return true
}

// formLocation reads a case location from a multipart form. The client may
// send it as a JSON encoded "location" field or as flat latitude, longitude
// and address fields.
func formLocation(c *gin.Context) (validators.LocationRequest, error) {
	var location validators.LocationRequest

	if raw := strings.TrimSpace(c.PostForm("location")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &location); err != nil {
			return location, validators.NewValidationError("location", "location must be a JSON object")
		}
		return location, nil
	}

	var errs validators.ValidationErrors
	for _, field := range []struct {
		name  string
		limit float64
		dest  **float64
	}{
		{"latitude", 90, &location.Latitude},
		{"longitude", 180, &location.Longitude},
	} {
		raw := c.PostForm(field.name)
		if strings.TrimSpace(raw) == "" {
			continue
		}
		value, verr := validators.ParseCoordinate("location."+field.name, raw, field.limit)
		if verr != nil {
			errs = append(errs, *verr)
			continue
		}
		*field.dest = &value
	}
	location.Address = c.PostForm("address")
	return location, errs.Err()
}
