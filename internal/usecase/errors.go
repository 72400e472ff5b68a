package usecase

import (
	"errors"
	"net/http"
	"strings"

	"go-autofill-backend/internal/domain"
	"go-autofill-backend/pkg/apperror"
	"go-autofill-backend/pkg/validation"
)

func validationError(err error) *apperror.AppError {
	return apperror.BadRequest(strings.Join(validation.FormatValidationErrors(err), "; "))
}

// storeError turns repository errors into client-facing errors. Anything
// unrecognised is left for the error middleware to report as a 500.
func storeError(err error, conflictMessage string) error {
	switch {
	case errors.Is(err, domain.ErrDuplicateKey):
		if conflictMessage == "" {
			conflictMessage = "Resource already exists"
		}
		return apperror.New(http.StatusConflict, conflictMessage, err)
	case errors.Is(err, domain.ErrUnavailable):
		return apperror.Unavailable(err)
	case errors.Is(err, domain.ErrNotFound):
		return apperror.New(http.StatusNotFound, "Resource not found", err)
	default:
		return err
	}
}
