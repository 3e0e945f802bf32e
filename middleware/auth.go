package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Taolee-crypto/timelink-backend/logic"
	"github.com/Taolee-crypto/timelink-backend/models"

	"github.com/gin-gonic/gin"
)

// UserKey is the gin context key holding the authenticated *models.User.
const UserKey = "user"

// Authenticator resolves a bearer token to an account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Auth rejects requests without a valid bearer token.
func Auth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token", "code": "missing_token"})
			return
		}
		user, err := a.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			if errors.Is(err, logic.ErrAuth) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "code": logic.Code(err)})
				return
			}
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": "internal"})
			return
		}
		c.Set(UserKey, user)
		c.Next()
	}
}

// Admin must run after Auth.
func Admin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || user.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required", "code": "forbidden"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the account stored by Auth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
