package postgres

import (
	"context"
	"encoding/json"

	"go-autofill-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type formHistoryRepo struct {
	db *pgxpool.Pool
}

func NewFormHistoryRepository(db *pgxpool.Pool) domain.FormHistoryRepository {
	return &formHistoryRepo{db: db}
}

func (r *formHistoryRepo) ListByUserID(ctx context.Context, userID string, limit int) ([]domain.FormHistory, error) {
	histories := []domain.FormHistory{}
	if uuid.Validate(userID) != nil {
		return histories, nil
	}

	query := `SELECT id, user_id, site, position_title, fields_attempted, fields_completed, status, "timestamp", details
              FROM form_histories WHERE user_id = $1
              ORDER BY "timestamp" DESC, seq DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var h domain.FormHistory
		var status string
		var details []byte
		if err := rows.Scan(
			&h.ID, &h.UserID, &h.Site, &h.PositionTitle, &h.FieldsAttempted,
			&h.FieldsCompleted, &status, &h.Timestamp, &details,
		); err != nil {
			return nil, mapError(err)
		}
		h.Status = domain.FormStatus(status)
		if len(details) > 0 {
			h.Details = &domain.FormDetails{}
			if err := json.Unmarshal(details, h.Details); err != nil {
				return nil, err
			}
		}
		histories = append(histories, h)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return histories, nil
}

// Create ignores history.Timestamp; the database clock is authoritative.
func (r *formHistoryRepo) Create(ctx context.Context, history *domain.FormHistory) error {
	var details *string
	if history.Details != nil {
		b, err := json.Marshal(history.Details)
		if err != nil {
			return err
		}
		s := string(b)
		details = &s
	}

	id := uuid.NewString()
	query := `INSERT INTO form_histories (id, user_id, site, position_title, fields_attempted, fields_completed, status, "timestamp", details)
              VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), $8::jsonb)
              RETURNING "timestamp"`
	err := r.db.QueryRow(ctx, query,
		id, history.UserID, history.Site, history.PositionTitle, history.FieldsAttempted,
		history.FieldsCompleted, string(history.Status), details,
	).Scan(&history.Timestamp)
	if err != nil {
		return mapError(err)
	}
	history.ID = id
	return nil
}
