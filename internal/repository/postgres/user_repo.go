package postgres

import (
	"context"
	"errors"

	"go-autofill-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, username, email, password, name, phone, location, current_position, created_at`

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) domain.UserRepository {
	return &userRepo{db: db}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.Password, &user.Name,
		&user.Phone, &user.Location, &user.CurrentPosition, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(err)
	}
	return &user, nil
}

// Create relies on the unique indexes for username and email, so the check
// and the insert are a single statement.
func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (id, username, email, password, name, phone, location, current_position, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
              RETURNING created_at`
	id := uuid.NewString()
	err := r.db.QueryRow(ctx, query,
		id, user.Username, user.Email, user.Password, user.Name,
		user.Phone, user.Location, user.CurrentPosition,
	).Scan(&user.CreatedAt)
	if err != nil {
		return mapError(err)
	}
	user.ID = id
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if uuid.Validate(id) != nil {
		return nil, nil
	}
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *userRepo) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	if uuid.Validate(id) != nil {
		return nil, nil
	}

	var updated *domain.User
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		user, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
		if err != nil || user == nil {
			return err
		}
		patch.Apply(user)

		query := `UPDATE users SET email = $2, password = $3, name = $4, phone = $5, location = $6, current_position = $7
                  WHERE id = $1`
		_, err = tx.Exec(ctx, query,
			user.ID, user.Email, user.Password, user.Name,
			user.Phone, user.Location, user.CurrentPosition,
		)
		if err != nil {
			return mapError(err)
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
