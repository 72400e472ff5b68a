package domain

import (
	"context"
	"time"
)

type Resume struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id" validate:"required"`
	Filename    string    `json:"filename" validate:"required,max=255"`
	FileContent string    `json:"file_content" validate:"required"` // base64 payload
	IsDefault   bool      `json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
}

// ResumeRepository keeps at most one default resume per user. Create with
// IsDefault and SetDefault clear the previous default in the same critical
// section, so readers never observe zero or two defaults mid-switch.
type ResumeRepository interface {
	ListByUserID(ctx context.Context, userID string) ([]Resume, error)
	GetByID(ctx context.Context, id string) (*Resume, error)
	GetDefault(ctx context.Context, userID string) (*Resume, error)
	Create(ctx context.Context, resume *Resume) error
	Delete(ctx context.Context, id string) (bool, error)
	SetDefault(ctx context.Context, id, userID string) (bool, error)
}

type UploadResumeInput struct {
	Filename    string `json:"filename" validate:"required,max=255"`
	FileContent string `json:"file_content" validate:"required"`
	IsDefault   bool   `json:"is_default"`
}

type ResumeUsecase interface {
	ListResumes(ctx context.Context, userID string) ([]Resume, error)
	GetDefaultResume(ctx context.Context, userID string) (*Resume, error)
	UploadResume(ctx context.Context, userID string, input UploadResumeInput) (*Resume, error)
	DeleteResume(ctx context.Context, userID, resumeID string) error
	SetDefaultResume(ctx context.Context, userID, resumeID string) error
}
