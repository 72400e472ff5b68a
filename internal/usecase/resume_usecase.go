package usecase

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"go-autofill-backend/internal/domain"
	"go-autofill-backend/pkg/apperror"
	"go-autofill-backend/pkg/logger"
	"go-autofill-backend/pkg/metrics"
	"go-autofill-backend/pkg/security"
	"go-autofill-backend/pkg/security/antivirus"

	"github.com/go-playground/validator/v10"
)

type resumeUsecase struct {
	repo        domain.ResumeRepository
	scanner     antivirus.Scanner
	securityLog *security.SecurityLogger
	maxBytes    int64
	validate    *validator.Validate
}

func NewResumeUsecase(
	repo domain.ResumeRepository,
	scanner antivirus.Scanner,
	securityLog *security.SecurityLogger,
	maxBytes int64,
	validate *validator.Validate,
) domain.ResumeUsecase {
	if scanner == nil {
		scanner = antivirus.NewNoOpScanner()
	}
	if securityLog == nil {
		securityLog = security.DefaultLogger()
	}
	return &resumeUsecase{
		repo:        repo,
		scanner:     scanner,
		securityLog: securityLog,
		maxBytes:    maxBytes,
		validate:    validate,
	}
}

func (u *resumeUsecase) ListResumes(ctx context.Context, userID string) ([]domain.Resume, error) {
	resumes, err := u.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "")
	}
	if resumes == nil {
		resumes = []domain.Resume{}
	}
	return resumes, nil
}

// GetDefaultResume returns (nil, nil) when the user has not picked a default.
func (u *resumeUsecase) GetDefaultResume(ctx context.Context, userID string) (*domain.Resume, error) {
	resume, err := u.repo.GetDefault(ctx, userID)
	if err != nil {
		return nil, storeError(err, "")
	}
	return resume, nil
}

// UploadResume decodes, validates and scans the payload before storing it.
// The stored FileContent keeps the client's encoding so downloads round-trip.
func (u *resumeUsecase) UploadResume(ctx context.Context, userID string, input domain.UploadResumeInput) (*domain.Resume, error) {
	if name := strings.TrimSpace(input.Filename); name != "" {
		input.Filename = filepath.Base(name)
	}
	if err := u.validate.Struct(input); err != nil {
		metrics.ObserveResumeUpload("rejected")
		return nil, validationError(err)
	}

	data, err := security.DecodeResumeContent(input.FileContent)
	if err != nil {
		metrics.ObserveResumeUpload("rejected")
		u.securityLog.LogUploadRejected(ctx, userID, input.Filename, "invalid_encoding")
		return nil, apperror.BadRequest("File content must be base64 encoded")
	}

	check := security.ValidateResume(input.Filename, data, u.maxBytes)
	if !check.Valid {
		metrics.ObserveResumeUpload("rejected")
		u.securityLog.LogUploadRejected(ctx, userID, input.Filename, check.Error)
		return nil, apperror.BadRequest(check.Error)
	}

	scan := u.scanner.Scan(ctx, input.Filename, data)
	if scan.Error != nil {
		metrics.ObserveResumeUpload("rejected")
		logger.Log.Error("Resume scan failed",
			slog.String("scanner", scan.ScannerName),
			slog.Any("error", scan.Error),
		)
		return nil, apperror.Unavailable(scan.Error)
	}
	if scan.Infected {
		metrics.ObserveResumeUpload("infected")
		u.securityLog.LogUploadRejected(ctx, userID, input.Filename, "malware_detected")
		return nil, apperror.BadRequest("File rejected by malware scan")
	}

	resume := &domain.Resume{
		UserID:      userID,
		Filename:    input.Filename,
		FileContent: input.FileContent,
		IsDefault:   input.IsDefault,
	}
	if err := u.repo.Create(ctx, resume); err != nil {
		return nil, storeError(err, "")
	}
	metrics.ObserveResumeUpload("accepted")
	return resume, nil
}

func (u *resumeUsecase) DeleteResume(ctx context.Context, userID, resumeID string) error {
	resume, err := u.repo.GetByID(ctx, resumeID)
	if err != nil {
		return storeError(err, "")
	}
	// Someone else's resume is reported exactly like a missing one.
	if resume == nil || resume.UserID != userID {
		return apperror.NotFound("Resume not found")
	}

	deleted, err := u.repo.Delete(ctx, resumeID)
	if err != nil {
		return storeError(err, "")
	}
	if !deleted {
		return apperror.NotFound("Resume not found")
	}
	return nil
}

func (u *resumeUsecase) SetDefaultResume(ctx context.Context, userID, resumeID string) error {
	ok, err := u.repo.SetDefault(ctx, resumeID, userID)
	if err != nil {
		return storeError(err, "")
	}
	if !ok {
		return apperror.NotFound("Resume not found or not owned by user")
	}
	return nil
}
