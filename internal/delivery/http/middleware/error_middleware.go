package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"go-autofill-backend/internal/delivery/http/response"
	"go-autofill-backend/internal/domain"
	"go-autofill-backend/pkg/apperror"
	"go-autofill-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		switch {
		case errors.As(err, &appErr):
			if appErr.Code >= http.StatusInternalServerError {
				logError(c, appErr.Err)
			}
			response.Error(c, appErr.Code, appErr.Message, nil)
		case errors.Is(err, domain.ErrDuplicateKey):
			response.Error(c, http.StatusConflict, "Resource already exists", nil)
		case errors.Is(err, domain.ErrNotFound):
			response.Error(c, http.StatusNotFound, "Resource not found", nil)
		case errors.Is(err, domain.ErrUnavailable):
			logError(c, err)
			response.Error(c, http.StatusServiceUnavailable, "Service temporarily unavailable", nil)
		default:
			// Internal details stay in the server log
			logError(c, err)
			response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
		}
	}
}

func logError(c *gin.Context, err error) {
	logger.Log.Error("Request failed",
		slog.String("request_id", c.GetString(string(domain.KeyRequestID))),
		slog.String("method", c.Request.Method),
		slog.String("path", c.FullPath()),
		slog.Any("error", err),
	)
}
