package middleware

import (
	"strings"

	"kaavalcircle/internal/models"
	"kaavalcircle/internal/utils"
	"kaavalcircle/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	userIDKey   = "user_id"
	userTypeKey = "user_type"
)

// AuthRequired validates the bearer token and stores the caller's id and
// type on the context. Browsers cannot set headers on a websocket upgrade,
// so the token is also accepted as the "token" query parameter.
func AuthRequired(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			utils.UnauthorizedResponse(c, utils.ErrMissingToken)
			return
		}

		claims, err := utils.ValidateToken(token, jwtSecret)
		if err != nil {
			utils.UnauthorizedResponse(c, utils.ErrInvalidToken)
			return
		}

		userType := models.UserType(claims.UserType)
		if !userType.IsValid() {
			utils.UnauthorizedResponse(c, utils.ErrInvalidToken)
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(userTypeKey, userType)
		c.Request = c.Request.WithContext(logger.ContextWithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

// RoleRequired rejects callers whose user type is not one of roles. It must
// run after AuthRequired.
func RoleRequired(roles ...models.UserType) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer, ok := CurrentViewer(c)
		if !ok {
			utils.UnauthorizedResponse(c, "")
			return
		}

		for _, role := range roles {
			if viewer.UserType == role {
				c.Next()
				return
			}
		}
		utils.ForbiddenResponse(c)
	}
}

func PoliceRequired() gin.HandlerFunc {
	return RoleRequired(models.UserTypePolice)
}

func CitizenRequired() gin.HandlerFunc {
	return RoleRequired(models.UserTypeCitizen)
}

// CurrentViewer returns the authenticated caller set by AuthRequired.
func CurrentViewer(c *gin.Context) (models.Viewer, bool) {
	userID, ok := CurrentUserID(c)
	if !ok {
		return models.Viewer{}, false
	}
	userType, ok := c.Get(userTypeKey)
	if !ok {
		return models.Viewer{}, false
	}
	t, ok := userType.(models.UserType)
	if !ok {
		return models.Viewer{}, false
	}
	return models.Viewer{UserID: userID, UserType: t}, true
}

func CurrentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	value, ok := c.Get(userIDKey)
	if !ok {
		return primitive.NilObjectID, false
	}
	userID, ok := value.(primitive.ObjectID)
	return userID, ok
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Query("token")
}
