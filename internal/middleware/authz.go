package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"

	"github.com/marwanhaqiqi/be-task-management-system-new/internal/utils"
)

// UserIDKey is the gin context key holding the caller's uuid.UUID.
const UserIDKey = "user_id"

var ErrMissingToken = errors.New("missing bearer token")

type AuthzConfig struct {
	Secret string
}

// AuthzMiddleware verifies the bearer token issued by the identity provider
// and stores the caller id under UserIDKey.
func AuthzMiddleware(config AuthzConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := authenticate(c.GetHeader("Authorization"), config.Secret)
		if err != nil {
			RespondUnauthenticated(c)
			return
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

func authenticate(header, secret string) (uuid.UUID, error) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return uuid.Nil, ErrMissingToken
	}

	claims, err := utils.ParseJWT(strings.TrimSpace(token), secret)
	if err != nil {
		return uuid.Nil, err
	}

	userID, err := utils.ParseUUID(claims.CallerID())
	if err != nil {
		return uuid.Nil, utils.ErrInvalidToken
	}
	return userID, nil
}

// CurrentUserID returns the caller set by AuthzMiddleware.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func RespondUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": "Unauthenticated.",
	})
}
