package memory

import (
	"context"
	"fmt"

	"go-autofill-backend/internal/domain"
)

type statisticsRepo struct {
	s *Store
}

func (r *statisticsRepo) GetByUserID(ctx context.Context, userID string) (*domain.Statistics, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if stats, ok := r.s.stats[userID]; ok {
		return cloneStatistics(stats), nil
	}
	return nil, nil
}

func (r *statisticsRepo) Create(ctx context.Context, stats *domain.Statistics) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.stats[stats.UserID]; exists {
		return fmt.Errorf("%w: statistics already exist for user", domain.ErrDuplicateKey)
	}
	stats.ID = r.s.newID()
	r.s.stats[stats.UserID] = cloneStatistics(stats)
	return nil
}

func (r *statisticsRepo) Update(ctx context.Context, userID string, patch domain.StatisticsPatch) (*domain.Statistics, error) {
	return r.Apply(ctx, userID, patch.Apply)
}

func (r *statisticsRepo) Apply(ctx context.Context, userID string, fn func(*domain.Statistics)) (*domain.Statistics, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.stats[userID]
	if !ok {
		return nil, nil
	}
	updated := cloneStatistics(existing)
	fn(updated)
	updated.ID, updated.UserID = existing.ID, existing.UserID
	r.s.stats[userID] = cloneStatistics(updated)
	return updated, nil
}
