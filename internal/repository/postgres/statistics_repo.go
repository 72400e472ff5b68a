package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"go-autofill-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const statisticsColumns = `id, user_id, applications_filled, success_rate, forms_detected, time_saved, weekly_stats`

type statisticsRepo struct {
	db *pgxpool.Pool
}

func NewStatisticsRepository(db *pgxpool.Pool) domain.StatisticsRepository {
	return &statisticsRepo{db: db}
}

func scanStatistics(row pgx.Row) (*domain.Statistics, error) {
	var s domain.Statistics
	var weekly []byte
	err := row.Scan(&s.ID, &s.UserID, &s.ApplicationsFilled, &s.SuccessRate, &s.FormsDetected, &s.TimeSaved, &weekly)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(err)
	}
	if len(weekly) > 0 {
		s.WeeklyStats = &domain.WeeklyStats{}
		if err := json.Unmarshal(weekly, s.WeeklyStats); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

func encodeWeekly(w *domain.WeeklyStats) (*string, error) {
	if w == nil {
		return nil, nil
	}
	b, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

func (r *statisticsRepo) GetByUserID(ctx context.Context, userID string) (*domain.Statistics, error) {
	if uuid.Validate(userID) != nil {
		return nil, nil
	}
	return scanStatistics(r.db.QueryRow(ctx, `SELECT `+statisticsColumns+` FROM statistics WHERE user_id = $1`, userID))
}

func (r *statisticsRepo) Create(ctx context.Context, stats *domain.Statistics) error {
	weekly, err := encodeWeekly(stats.WeeklyStats)
	if err != nil {
		return err
	}
	id := uuid.NewString()

	query := `INSERT INTO statistics (id, user_id, applications_filled, success_rate, forms_detected, time_saved, weekly_stats)
              VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb)`
	_, err = r.db.Exec(ctx, query,
		id, stats.UserID, stats.ApplicationsFilled, stats.SuccessRate, stats.FormsDetected, stats.TimeSaved, weekly)
	if err != nil {
		return mapError(err)
	}
	stats.ID = id
	return nil
}

func (r *statisticsRepo) Update(ctx context.Context, userID string, patch domain.StatisticsPatch) (*domain.Statistics, error) {
	return r.Apply(ctx, userID, patch.Apply)
}

// Apply holds the statistics row lock for the whole read-modify-write, so
// concurrent outcomes for one user are never lost.
func (r *statisticsRepo) Apply(ctx context.Context, userID string, fn func(*domain.Statistics)) (*domain.Statistics, error) {
	if uuid.Validate(userID) != nil {
		return nil, nil
	}

	var updated *domain.Statistics
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		stats, err := scanStatistics(tx.QueryRow(ctx,
			`SELECT `+statisticsColumns+` FROM statistics WHERE user_id = $1 FOR UPDATE`, userID))
		if err != nil || stats == nil {
			return err
		}
		fn(stats)

		weekly, err := encodeWeekly(stats.WeeklyStats)
		if err != nil {
			return err
		}
		query := `UPDATE statistics SET applications_filled = $2, success_rate = $3, forms_detected = $4,
                  time_saved = $5, weekly_stats = $6::jsonb
                  WHERE user_id = $1`
		if _, err := tx.Exec(ctx, query,
			userID, stats.ApplicationsFilled, stats.SuccessRate, stats.FormsDetected, stats.TimeSaved, weekly); err != nil {
			return mapError(err)
		}
		updated = stats
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
