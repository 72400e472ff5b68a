package usecase

import (
	"context"
	"errors"

	"go-autofill-backend/internal/domain"
	"go-autofill-backend/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

type profileUsecase struct {
	repo     domain.ProfileRepository
	validate *validator.Validate
}

func NewProfileUsecase(repo domain.ProfileRepository, validate *validator.Validate) domain.ProfileUsecase {
	return &profileUsecase{
		repo:     repo,
		validate: validate,
	}
}

func (u *profileUsecase) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, err := u.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "")
	}
	if profile == nil {
		return nil, apperror.NotFound("Profile not found")
	}
	return profile, nil
}

// SaveProfile merges the patch into the user's profile, creating the
// profile first when none exists.
func (u *profileUsecase) SaveProfile(ctx context.Context, userID string, patch domain.ProfilePatch) (*domain.Profile, error) {
	// Unknown keys bind to nothing; a silent 200 would hide the mistake.
	if patch.IsEmpty() {
		return nil, apperror.BadRequest("No profile fields to update")
	}
	if err := u.validate.Struct(patch); err != nil {
		return nil, validationError(err)
	}

	existing, err := u.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "")
	}
	if existing == nil {
		profile := patch.ToProfile(userID)
		err := u.repo.Create(ctx, profile)
		if err == nil {
			return profile, nil
		}
		// Lost a race with a concurrent create; merge into the winner.
		if !errors.Is(err, domain.ErrDuplicateKey) {
			return nil, storeError(err, "")
		}
	}

	profile, err := u.repo.Update(ctx, userID, patch)
	if err != nil {
		return nil, storeError(err, "")
	}
	if profile == nil {
		return nil, apperror.NotFound("Profile not found")
	}
	return profile, nil
}
