package v1

import (
	"go-autofill-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

// currentUserID is set by the auth middleware on every protected route.
func currentUserID(c *gin.Context) string {
	return c.GetString(string(domain.KeyUserID))
}

func requestID(c *gin.Context) string {
	return c.GetString(string(domain.KeyRequestID))
}
