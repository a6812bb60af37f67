package handlers

import (
	"net/http"

	"kaavalcircle/internal/middleware"
	"kaavalcircle/internal/services"
	"kaavalcircle/internal/utils"
	"kaavalcircle/internal/validators"
	"kaavalcircle/pkg/logger"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
	logger      *logger.Logger
}

func NewAuthHandler(authService services.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register creates a citizen or police account. Citizens may attach a
// profile photo by posting multipart/form-data with a "photo" file.
func (h *AuthHandler) Register(c *gin.Context) {
	var request validators.RegisterRequest
	var photo *services.UploadedFile

	if isMultipart(c) {
		if !parseMultipart(c) {
			return
		}
		if err := c.ShouldBind(&request); err != nil {
			utils.BadRequestResponse(c, "Invalid request body")
			return
		}
		files, err := openFormFiles(c, "photo")
		if err != nil {
			utils.BadRequestResponse(c, "Invalid photo upload")
			return
		}
		defer files.Close()
		if len(files.files) > 0 {
			photo = files.files[0]
		}
	} else if !bindJSON(c, &request) {
		return
	}

	result, err := h.authService.Register(c.Request.Context(), &request, photo)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.TokenResponse(c, http.StatusCreated, "Registration successful", result.Token, result.User)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var request validators.LoginRequest
	if !bindJSON(c, &request) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &request)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.TokenResponse(c, http.StatusOK, "Login successful", result.Token, result.User)
}

// Me returns the profile of the authenticated caller.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	user, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	utils.SuccessResponse(c, "", user)
}
