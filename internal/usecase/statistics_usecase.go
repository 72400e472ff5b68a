package usecase

import (
	"context"

	"go-autofill-backend/internal/domain"
	"go-autofill-backend/pkg/apperror"
)

type statisticsUsecase struct {
	repo domain.StatisticsRepository
}

func NewStatisticsUsecase(repo domain.StatisticsRepository) domain.StatisticsUsecase {
	return &statisticsUsecase{repo: repo}
}

func (u *statisticsUsecase) GetStatistics(ctx context.Context, userID string) (*domain.Statistics, error) {
	stats, err := u.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "")
	}
	if stats == nil {
		return nil, apperror.NotFound("Statistics not found")
	}
	return stats, nil
}
