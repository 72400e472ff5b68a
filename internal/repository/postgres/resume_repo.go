package postgres

import (
	"context"
	"errors"

	"go-autofill-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const resumeColumns = `id, user_id, filename, file_content, is_default, created_at`

type resumeRepo struct {
	db *pgxpool.Pool
}

func NewResumeRepository(db *pgxpool.Pool) domain.ResumeRepository {
	return &resumeRepo{db: db}
}

func scanResume(row pgx.Row) (*domain.Resume, error) {
	var res domain.Resume
	err := row.Scan(&res.ID, &res.UserID, &res.Filename, &res.FileContent, &res.IsDefault, &res.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(err)
	}
	return &res, nil
}

func (r *resumeRepo) ListByUserID(ctx context.Context, userID string) ([]domain.Resume, error) {
	resumes := []domain.Resume{}
	if uuid.Validate(userID) != nil {
		return resumes, nil
	}

	rows, err := r.db.Query(ctx, `SELECT `+resumeColumns+` FROM resumes WHERE user_id = $1 ORDER BY seq DESC`, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		resumes = append(resumes, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return resumes, nil
}

func (r *resumeRepo) GetByID(ctx context.Context, id string) (*domain.Resume, error) {
	if uuid.Validate(id) != nil {
		return nil, nil
	}
	return scanResume(r.db.QueryRow(ctx, `SELECT `+resumeColumns+` FROM resumes WHERE id = $1`, id))
}

func (r *resumeRepo) GetDefault(ctx context.Context, userID string) (*domain.Resume, error) {
	if uuid.Validate(userID) != nil {
		return nil, nil
	}
	return scanResume(r.db.QueryRow(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE user_id = $1 AND is_default LIMIT 1`, userID))
}

// Create clears any previous default inside the same transaction, holding the
// owner's row lock so concurrent switches for one user serialise.
func (r *resumeRepo) Create(ctx context.Context, resume *domain.Resume) error {
	id := uuid.NewString()
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		if resume.IsDefault {
			if _, err := lockUser(ctx, tx, resume.UserID); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx,
				`UPDATE resumes SET is_default = FALSE WHERE user_id = $1 AND is_default`, resume.UserID); err != nil {
				return mapError(err)
			}
		}

		query := `INSERT INTO resumes (id, user_id, filename, file_content, is_default, created_at)
                  VALUES ($1, $2, $3, $4, $5, NOW())
                  RETURNING created_at`
		err := tx.QueryRow(ctx, query, id, resume.UserID, resume.Filename, resume.FileContent, resume.IsDefault).
			Scan(&resume.CreatedAt)
		return mapError(err)
	})
	if err != nil {
		return err
	}
	resume.ID = id
	return nil
}

func (r *resumeRepo) Delete(ctx context.Context, id string) (bool, error) {
	if uuid.Validate(id) != nil {
		return false, nil
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM resumes WHERE id = $1`, id)
	if err != nil {
		return false, mapError(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *resumeRepo) SetDefault(ctx context.Context, id, userID string) (bool, error) {
	if uuid.Validate(id) != nil || uuid.Validate(userID) != nil {
		return false, nil
	}

	found := false
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		ok, err := lockUser(ctx, tx, userID)
		if err != nil || !ok {
			return err
		}

		var owner string
		err = tx.QueryRow(ctx, `SELECT user_id FROM resumes WHERE id = $1`, id).Scan(&owner)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return mapError(err)
		}
		if owner != userID {
			return nil
		}

		if _, err := tx.Exec(ctx,
			`UPDATE resumes SET is_default = FALSE WHERE user_id = $1 AND is_default AND id <> $2`, userID, id); err != nil {
			return mapError(err)
		}
		if _, err := tx.Exec(ctx, `UPDATE resumes SET is_default = TRUE WHERE id = $1`, id); err != nil {
			return mapError(err)
		}
		found = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}
