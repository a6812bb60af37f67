package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"kaavalcircle/internal/middleware"
	"kaavalcircle/internal/models"
	"kaavalcircle/internal/services"
	"kaavalcircle/internal/utils"
	"kaavalcircle/internal/validators"
	"kaavalcircle/pkg/logger"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error onto the response envelope. Errors
// without a known mapping become a bare 500 and are logged with the
// request and user ids carried on the request context.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	var validationErrs validators.ValidationErrors
	var notFound *services.NotFoundError
	var lockout *services.LockoutError

	switch {
	case errors.As(err, &validationErrs):
		utils.ValidationErrorResponse(c, validationErrs)
	case errors.As(err, &notFound):
		utils.NotFoundResponse(c, notFound.Resource)
	case errors.Is(err, services.ErrNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, utils.CodeNotFound, err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c)
	case errors.Is(err, services.ErrConflict):
		utils.ConflictResponse(c, utils.ErrUserExists)
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.UnauthorizedResponse(c, utils.ErrInvalidCredentials)
	case errors.As(err, &lockout):
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(lockout.RetryAfter.Seconds()))))
		utils.TooManyRequestsResponse(c, utils.ErrTooManyAttempts)
	case errors.Is(err, services.ErrTooManyAttempts):
		utils.TooManyRequestsResponse(c, utils.ErrTooManyAttempts)
	default:
		log.WithContext(c.Request.Context()).WithError(err).WithFields(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("Request failed")
		_ = c.Error(err)
		utils.InternalServerErrorResponse(c)
	}
}

// bindJSON decodes the body and reports a malformed payload as a 400.
func bindJSON(c *gin.Context, target interface{}) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return false
	}
	return true
}

func currentViewer(c *gin.Context) (models.Viewer, bool) {
	viewer, ok := middleware.CurrentViewer(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
	}
	return viewer, ok
}
