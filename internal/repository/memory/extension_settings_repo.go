package memory

import (
	"context"
	"fmt"

	"go-autofill-backend/internal/domain"
)

type extensionSettingsRepo struct {
	s *Store
}

func (r *extensionSettingsRepo) GetByUserID(ctx context.Context, userID string) (*domain.ExtensionSettings, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if settings, ok := r.s.settings[userID]; ok {
		return cloneSettings(settings), nil
	}
	return nil, nil
}

func (r *extensionSettingsRepo) Create(ctx context.Context, settings *domain.ExtensionSettings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.settings[settings.UserID]; exists {
		return fmt.Errorf("%w: extension settings already exist for user", domain.ErrDuplicateKey)
	}
	settings.ID = r.s.newID()
	r.s.settings[settings.UserID] = cloneSettings(settings)
	return nil
}

func (r *extensionSettingsRepo) Update(ctx context.Context, userID string, patch domain.ExtensionSettingsPatch) (*domain.ExtensionSettings, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.settings[userID]
	if !ok {
		return nil, nil
	}
	updated := cloneSettings(existing)
	patch.Apply(updated)
	r.s.settings[userID] = cloneSettings(updated)
	return updated, nil
}
