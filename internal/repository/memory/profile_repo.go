package memory

import (
	"context"
	"fmt"

	"go-autofill-backend/internal/domain"
)

type profileRepo struct {
	s *Store
}

func (r *profileRepo) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if p, ok := r.s.profiles[userID]; ok {
		return cloneProfile(p), nil
	}
	return nil, nil
}

func (r *profileRepo) Create(ctx context.Context, profile *domain.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.profiles[profile.UserID]; exists {
		return fmt.Errorf("%w: profile already exists for user", domain.ErrDuplicateKey)
	}
	profile.ID = r.s.newID()
	r.s.profiles[profile.UserID] = cloneProfile(profile)
	return nil
}

func (r *profileRepo) Update(ctx context.Context, userID string, patch domain.ProfilePatch) (*domain.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.profiles[userID]
	if !ok {
		return nil, nil
	}
	updated := cloneProfile(existing)
	patch.Apply(updated)
	r.s.profiles[userID] = cloneProfile(updated)
	return updated, nil
}
