package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"go-autofill-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const profileColumns = `id, user_id, personal_info, work_experience, education, skills, custom_fields, completion_percentage`

type profileRepo struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) domain.ProfileRepository {
	return &profileRepo{db: db}
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	var personalInfo, workExperience, education, customFields []byte
	var skills []string

	err := row.Scan(
		&p.ID, &p.UserID, &personalInfo, &workExperience, &education,
		pq.Array(&skills), &customFields, &p.CompletionPercentage,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(err)
	}

	if err := json.Unmarshal(personalInfo, &p.PersonalInfo); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(workExperience, &p.WorkExperience); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(education, &p.Education); err != nil {
		return nil, err
	}
	if len(customFields) > 0 {
		if err := json.Unmarshal(customFields, &p.CustomFields); err != nil {
			return nil, err
		}
	}
	p.Skills = skills
	if p.Skills == nil {
		p.Skills = []string{}
	}
	return &p, nil
}

// profileArgs encodes the JSONB columns in column order after user_id.
func profileArgs(p *domain.Profile) ([]any, error) {
	workExperience := p.WorkExperience
	if workExperience == nil {
		workExperience = []domain.WorkExperience{}
	}
	education := p.Education
	if education == nil {
		education = []domain.Education{}
	}
	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}

	personalInfoJSON, err := json.Marshal(p.PersonalInfo)
	if err != nil {
		return nil, err
	}
	workJSON, err := json.Marshal(workExperience)
	if err != nil {
		return nil, err
	}
	educationJSON, err := json.Marshal(education)
	if err != nil {
		return nil, err
	}
	var customJSON *string
	if p.CustomFields != nil {
		b, err := json.Marshal(p.CustomFields)
		if err != nil {
			return nil, err
		}
		s := string(b)
		customJSON = &s
	}

	return []any{
		string(personalInfoJSON), string(workJSON), string(educationJSON),
		pq.Array(skills), customJSON, p.CompletionPercentage,
	}, nil
}

func (r *profileRepo) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	if uuid.Validate(userID) != nil {
		return nil, nil
	}
	return scanProfile(r.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID))
}

func (r *profileRepo) Create(ctx context.Context, profile *domain.Profile) error {
	args, err := profileArgs(profile)
	if err != nil {
		return err
	}
	id := uuid.NewString()

	query := `INSERT INTO profiles (id, user_id, personal_info, work_experience, education, skills, custom_fields, completion_percentage)
              VALUES ($1, $2, $3::jsonb, $4::jsonb, $5::jsonb, $6, $7::jsonb, $8)`
	if _, err := r.db.Exec(ctx, query, append([]any{id, profile.UserID}, args...)...); err != nil {
		return mapError(err)
	}
	profile.ID = id
	return nil
}

func (r *profileRepo) Update(ctx context.Context, userID string, patch domain.ProfilePatch) (*domain.Profile, error) {
	if uuid.Validate(userID) != nil {
		return nil, nil
	}

	var updated *domain.Profile
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		profile, err := scanProfile(tx.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1 FOR UPDATE`, userID))
		if err != nil || profile == nil {
			return err
		}
		patch.Apply(profile)

		args, err := profileArgs(profile)
		if err != nil {
			return err
		}
		query := `UPDATE profiles SET personal_info = $2::jsonb, work_experience = $3::jsonb, education = $4::jsonb,
                  skills = $5, custom_fields = $6::jsonb, completion_percentage = $7
                  WHERE user_id = $1`
		if _, err := tx.Exec(ctx, query, append([]any{userID}, args...)...); err != nil {
			return mapError(err)
		}
		updated = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
