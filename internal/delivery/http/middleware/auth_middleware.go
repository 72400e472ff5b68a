package middleware

import (
	"errors"
	"net/http"
	"strings"

	"go-autofill-backend/internal/delivery/http/response"
	"go-autofill-backend/internal/domain"
	"go-autofill-backend/pkg/apperror"
	"go-autofill-backend/pkg/auth"
	"go-autofill-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware resolves the caller from a bearer token or the auth_token
// cookie. The user must still exist; a token for a deleted account is
// rejected.
func AuthMiddleware(tokens *auth.TokenService, authUC domain.AuthUsecase, secLog *security.SecurityLogger) gin.HandlerFunc {
	if secLog == nil {
		secLog = security.DefaultLogger()
	}

	return func(c *gin.Context) {
		var tokenString string
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			tokenString = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		} else if cookie, err := c.Cookie("auth_token"); err == nil && cookie != "" {
			tokenString = cookie
		}

		if tokenString == "" {
			secLog.LogUnauthorizedAccess(c.Request.Context(), c.ClientIP(), c.GetHeader("User-Agent"), c.GetString(string(domain.KeyRequestID)), c.FullPath(), "missing_token")
			response.Error(c, http.StatusUnauthorized, "Access token required", nil)
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			secLog.LogUnauthorizedAccess(c.Request.Context(), c.ClientIP(), c.GetHeader("User-Agent"), c.GetString(string(domain.KeyRequestID)), c.FullPath(), "invalid_token")
			response.Error(c, http.StatusForbidden, "Invalid or expired token", nil)
			c.Abort()
			return
		}

		user, err := authUC.GetCurrentUser(c.Request.Context(), claims.UserID)
		var appErr *apperror.AppError
		if user == nil && (err == nil || (errors.As(err, &appErr) && appErr.Code == http.StatusNotFound)) {
			response.Error(c, http.StatusUnauthorized, "User not found", nil)
			c.Abort()
			return
		}
		if err != nil {
			// Storage failures are not an auth verdict; the token may still be good
			c.Error(err)
			c.Abort()
			return
		}

		c.Set(string(domain.KeyUserID), user.ID)
		c.Set(string(domain.KeyUsername), user.Username)
		c.Set(string(domain.KeyUserEmail), user.Email)

		c.Next()
	}
}
