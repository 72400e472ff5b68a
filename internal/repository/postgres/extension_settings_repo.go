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

const settingsColumns = `id, user_id, auto_fill_on_load, show_notifications, save_form_history, field_mappings`

type extensionSettingsRepo struct {
	db *pgxpool.Pool
}

func NewExtensionSettingsRepository(db *pgxpool.Pool) domain.ExtensionSettingsRepository {
	return &extensionSettingsRepo{db: db}
}

func scanSettings(row pgx.Row) (*domain.ExtensionSettings, error) {
	var s domain.ExtensionSettings
	var mappings []byte
	err := row.Scan(&s.ID, &s.UserID, &s.AutoFillOnLoad, &s.ShowNotifications, &s.SaveFormHistory, &mappings)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(err)
	}
	if len(mappings) > 0 {
		if err := json.Unmarshal(mappings, &s.FieldMappings); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

func encodeMappings(m domain.FieldMappings) (*string, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

func (r *extensionSettingsRepo) GetByUserID(ctx context.Context, userID string) (*domain.ExtensionSettings, error) {
	if uuid.Validate(userID) != nil {
		return nil, nil
	}
	return scanSettings(r.db.QueryRow(ctx, `SELECT `+settingsColumns+` FROM extension_settings WHERE user_id = $1`, userID))
}

func (r *extensionSettingsRepo) Create(ctx context.Context, settings *domain.ExtensionSettings) error {
	mappings, err := encodeMappings(settings.FieldMappings)
	if err != nil {
		return err
	}
	id := uuid.NewString()

	query := `INSERT INTO extension_settings (id, user_id, auto_fill_on_load, show_notifications, save_form_history, field_mappings)
              VALUES ($1, $2, $3, $4, $5, $6::jsonb)`
	_, err = r.db.Exec(ctx, query,
		id, settings.UserID, settings.AutoFillOnLoad, settings.ShowNotifications, settings.SaveFormHistory, mappings)
	if err != nil {
		return mapError(err)
	}
	settings.ID = id
	return nil
}

func (r *extensionSettingsRepo) Update(ctx context.Context, userID string, patch domain.ExtensionSettingsPatch) (*domain.ExtensionSettings, error) {
	if uuid.Validate(userID) != nil {
		return nil, nil
	}

	var updated *domain.ExtensionSettings
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		settings, err := scanSettings(tx.QueryRow(ctx,
			`SELECT `+settingsColumns+` FROM extension_settings WHERE user_id = $1 FOR UPDATE`, userID))
		if err != nil || settings == nil {
			return err
		}
		patch.Apply(settings)

		mappings, err := encodeMappings(settings.FieldMappings)
		if err != nil {
			return err
		}
		query := `UPDATE extension_settings SET auto_fill_on_load = $2, show_notifications = $3,
                  save_form_history = $4, field_mappings = $5::jsonb
                  WHERE user_id = $1`
		if _, err := tx.Exec(ctx, query,
			userID, settings.AutoFillOnLoad, settings.ShowNotifications, settings.SaveFormHistory, mappings); err != nil {
			return mapError(err)
		}
		updated = settings
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
