package usecase

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go-autofill-backend/internal/domain"
	"go-autofill-backend/pkg/logger"
	"go-autofill-backend/pkg/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
)

// Rows beyond this are left out of an export.
const maxExportRows = 10000

type formHistoryUsecase struct {
	histories domain.FormHistoryRepository
	stats     domain.StatisticsRepository
	validate  *validator.Validate
	now       func() time.Time
}

func NewFormHistoryUsecase(histories domain.FormHistoryRepository, stats domain.StatisticsRepository, validate *validator.Validate) domain.FormHistoryUsecase {
	return &formHistoryUsecase{
		histories: histories,
		stats:     stats,
		validate:  validate,
		now:       time.Now,
	}
}

func (u *formHistoryUsecase) ListHistory(ctx context.Context, userID string, limit int) ([]domain.FormHistory, error) {
	histories, err := u.histories.ListByUserID(ctx, userID, limit)
	if err != nil {
		return nil, storeError(err, "")
	}
	if histories == nil {
		histories = []domain.FormHistory{}
	}
	return histories, nil
}

// RecordForm stores one auto-fill outcome and folds it into the user's
// statistics. A user without a statistics record keeps the history entry
// and no counters are touched.
func (u *formHistoryUsecase) RecordForm(ctx context.Context, userID string, input domain.RecordFormInput) (*domain.FormHistory, error) {
	history := &domain.FormHistory{
		UserID:          userID,
		Site:            strings.TrimSpace(input.Site),
		PositionTitle:   input.PositionTitle,
		FieldsAttempted: input.FieldsAttempted,
		FieldsCompleted: input.FieldsCompleted,
		Status:          input.Status,
		Details:         input.Details,
	}
	if err := u.validate.Struct(history); err != nil {
		return nil, validationError(err)
	}

	if err := u.histories.Create(ctx, history); err != nil {
		return nil, storeError(err, "")
	}
	metrics.ObserveFormRecorded(string(history.Status), history.FieldsCompleted)

	stats, err := u.stats.Apply(ctx, userID, func(s *domain.Statistics) {
		domain.RecordOutcome(s, history.Status)
	})
	if err != nil {
		// The history entry is already stored; failing the request would
		// invite a retry that records the same form twice.
		logger.Log.Error("Failed to update statistics",
			slog.String("user_id", userID),
			slog.String("history_id", history.ID),
			slog.Any("error", err),
		)
		return history, nil
	}
	if stats == nil {
		logger.Log.Debug("No statistics record, skipping update", slog.String("user_id", userID))
	}
	return history, nil
}

var exportColumns = []string{"Date", "Site", "Position", "Status", "Fields Attempted", "Fields Completed", "Details"}

// ExportHistory renders the user's form history as an XLSX workbook, newest
// first. It returns the file bytes and a suggested file name.
func (u *formHistoryUsecase) ExportHistory(ctx context.Context, userID string) ([]byte, string, error) {
	histories, err := u.histories.ListByUserID(ctx, userID, maxExportRows)
	if err != nil {
		return nil, "", storeError(err, "")
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Form History"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, "", fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, h := range histories {
		values := exportRow(h)
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range exportColumns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to write Excel file: %w", err)
	}

	filename := fmt.Sprintf("form_history_%s.xlsx", u.now().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}

func exportRow(h domain.FormHistory) []any {
	position := ""
	if h.PositionTitle != nil {
		position = *h.PositionTitle
	}
	details := ""
	if h.Details != nil {
		if h.Details.Error != "" {
			details = h.Details.Error
		} else {
			details = strings.Join(h.Details.Fields, ", ")
		}
	}
	return []any{
		h.Timestamp.UTC().Format("2006-01-02 15:04:05"),
		h.Site,
		position,
		string(h.Status),
		h.FieldsAttempted,
		h.FieldsCompleted,
		details,
	}
}
