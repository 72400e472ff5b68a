package domain

import (
	"context"
	"math"
)

// MinutesSavedPerForm is the fixed time credit for every recorded form.
const MinutesSavedPerForm = 5

// WeeklyStatsBuckets is the number of periods seeded into a new statistics record.
const WeeklyStatsBuckets = 4

type WeeklyStats struct {
	ApplicationsFilled []int `json:"applications_filled"`
	SuccessRates       []int `json:"success_rates"`
}

type Statistics struct {
	ID                 string       `json:"id"`
	UserID             string       `json:"user_id"`
	ApplicationsFilled int          `json:"applications_filled"`
	SuccessRate        int          `json:"success_rate"` // percent, 0-100
	FormsDetected      int          `json:"forms_detected"`
	TimeSaved          int          `json:"time_saved"` // minutes
	WeeklyStats        *WeeklyStats `json:"weekly_stats,omitempty"`
}

type StatisticsPatch struct {
	ApplicationsFilled *int         `json:"applications_filled,omitempty"`
	SuccessRate        *int         `json:"success_rate,omitempty"`
	FormsDetected      *int         `json:"forms_detected,omitempty"`
	TimeSaved          *int         `json:"time_saved,omitempty"`
	WeeklyStats        *WeeklyStats `json:"weekly_stats,omitempty"`
}

func (p StatisticsPatch) Apply(s *Statistics) {
	if p.ApplicationsFilled != nil {
		s.ApplicationsFilled = *p.ApplicationsFilled
	}
	if p.SuccessRate != nil {
		s.SuccessRate = *p.SuccessRate
	}
	if p.FormsDetected != nil {
		s.FormsDetected = *p.FormsDetected
	}
	if p.TimeSaved != nil {
		s.TimeSaved = *p.TimeSaved
	}
	if p.WeeklyStats != nil {
		s.WeeklyStats = p.WeeklyStats
	}
}

// NewEmptyStatistics returns zeroed counters with empty weekly buckets.
func NewEmptyStatistics(userID string) *Statistics {
	return &Statistics{
		UserID: userID,
		WeeklyStats: &WeeklyStats{
			ApplicationsFilled: make([]int, WeeklyStatsBuckets),
			SuccessRates:       make([]int, WeeklyStatsBuckets),
		},
	}
}

// RecordOutcome folds one form outcome into the running counters.
//
// Only the rounded success percentage is persisted, so the number of
// successful forms so far is reconstructed from it before the new outcome is
// added. The reconstruction is exact while ApplicationsFilled <= 100 and may
// drift by one beyond that.
func RecordOutcome(s *Statistics, status FormStatus) {
	n := s.ApplicationsFilled
	successful := int(math.Round(float64(s.SuccessRate) * float64(n) / 100))
	if status == FormStatusSuccess {
		successful++
	}
	n++

	s.ApplicationsFilled = n
	s.SuccessRate = int(math.Round(float64(successful) / float64(n) * 100))
	s.FormsDetected++
	s.TimeSaved += MinutesSavedPerForm
}

// StatisticsRepository allows one record per user. Apply runs fn on the
// current record inside a per-user critical section and persists the result;
// it returns (nil, nil) when the user has no record.
type StatisticsRepository interface {
	GetByUserID(ctx context.Context, userID string) (*Statistics, error)
	Create(ctx context.Context, stats *Statistics) error
	Update(ctx context.Context, userID string, patch StatisticsPatch) (*Statistics, error)
	Apply(ctx context.Context, userID string, fn func(*Statistics)) (*Statistics, error)
}

type StatisticsUsecase interface {
	GetStatistics(ctx context.Context, userID string) (*Statistics, error)
}
