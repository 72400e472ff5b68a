package domain

import (
	"context"
	"time"
)

type FormStatus string

const (
	FormStatusSuccess FormStatus = "success"
	FormStatusPartial FormStatus = "partial"
	FormStatusFailed  FormStatus = "failed"
)

// FormDetails holds either the filled field names or the failure reason.
type FormDetails struct {
	Fields []string `json:"fields,omitempty"`
	Error  string   `json:"error,omitempty"`
}

// FormHistory records one auto-fill attempt. Records are immutable once stored.
type FormHistory struct {
	ID              string       `json:"id"`
	UserID          string       `json:"user_id" validate:"required"`
	Site            string       `json:"site" validate:"required,max=255"`
	PositionTitle   *string      `json:"position_title,omitempty" validate:"omitempty,max=255"`
	FieldsAttempted int          `json:"fields_attempted" validate:"min=0"`
	FieldsCompleted int          `json:"fields_completed" validate:"min=0"`
	Status          FormStatus   `json:"status" validate:"required,oneof=success partial failed"`
	Timestamp       time.Time    `json:"timestamp"`
	Details         *FormDetails `json:"details,omitempty"`
}

// FormHistoryRepository lists newest first. A limit <= 0 means no limit.
type FormHistoryRepository interface {
	ListByUserID(ctx context.Context, userID string, limit int) ([]FormHistory, error)
	Create(ctx context.Context, history *FormHistory) error
}

type RecordFormInput struct {
	Site            string       `json:"site"`
	PositionTitle   *string      `json:"position_title,omitempty"`
	FieldsAttempted int          `json:"fields_attempted"`
	FieldsCompleted int          `json:"fields_completed"`
	Status          FormStatus   `json:"status"`
	Details         *FormDetails `json:"details,omitempty"`
}

type FormHistoryUsecase interface {
	ListHistory(ctx context.Context, userID string, limit int) ([]FormHistory, error)
	RecordForm(ctx context.Context, userID string, input RecordFormInput) (*FormHistory, error)
	ExportHistory(ctx context.Context, userID string) ([]byte, string, error)
}
