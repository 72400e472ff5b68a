package usecase

import (
	"context"
	"errors"

	"go-autofill-backend/internal/domain"
	"go-autofill-backend/pkg/apperror"
)

type extensionUsecase struct {
	settings domain.ExtensionSettingsRepository
	profiles domain.ProfileRepository
	resumes  domain.ResumeRepository
}

func NewExtensionUsecase(store domain.Store) domain.ExtensionUsecase {
	return &extensionUsecase{
		settings: store.ExtensionSettings(),
		profiles: store.Profiles(),
		resumes:  store.Resumes(),
	}
}

func (u *extensionUsecase) GetSettings(ctx context.Context, userID string) (*domain.ExtensionSettings, error) {
	settings, err := u.settings.GetByUserID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "")
	}
	if settings == nil {
		return nil, apperror.NotFound("Extension settings not found")
	}
	return settings, nil
}

// SaveSettings merges the patch into the user's settings. Missing settings
// are created from the defaults with the patch applied.
func (u *extensionUsecase) SaveSettings(ctx context.Context, userID string, patch domain.ExtensionSettingsPatch) (*domain.ExtensionSettings, error) {
	if patch.IsEmpty() {
		return nil, apperror.BadRequest("No settings to update")
	}
	existing, err := u.settings.GetByUserID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "")
	}
	if existing == nil {
		settings := domain.NewDefaultExtensionSettings(userID)
		patch.Apply(settings)
		err := u.settings.Create(ctx, settings)
		if err == nil {
			return settings, nil
		}
		if !errors.Is(err, domain.ErrDuplicateKey) {
			return nil, storeError(err, "")
		}
	}

	settings, err := u.settings.Update(ctx, userID, patch)
	if err != nil {
		return nil, storeError(err, "")
	}
	if settings == nil {
		return nil, apperror.NotFound("Extension settings not found")
	}
	return settings, nil
}

// GetExtensionData bundles the profile, settings and default resume. The
// default resume is optional; profile and settings are not.
func (u *extensionUsecase) GetExtensionData(ctx context.Context, userID string) (*domain.ExtensionData, error) {
	profile, err := u.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "")
	}
	settings, err := u.settings.GetByUserID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "")
	}
	if profile == nil || settings == nil {
		return nil, apperror.NotFound("Profile or settings not found")
	}

	resume, err := u.resumes.GetDefault(ctx, userID)
	if err != nil {
		return nil, storeError(err, "")
	}
	return &domain.ExtensionData{
		Profile:       profile,
		Settings:      settings,
		DefaultResume: resume,
	}, nil
}
