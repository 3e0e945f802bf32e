package controller

import (
	"net/http"

	"github.com/Taolee-crypto/timelink-backend/middleware"
	"github.com/Taolee-crypto/timelink-backend/models"

	"github.com/gin-gonic/gin"
)

func extractUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context", "code": "missing_token"})
		return nil, false
	}
	return user, true
}
