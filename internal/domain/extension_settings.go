package domain

import "context"

// FieldMappings maps site -> logical field -> page selector.
type FieldMappings map[string]map[string]string

type ExtensionSettings struct {
	ID                string        `json:"id"`
	UserID            string        `json:"user_id" validate:"required"`
	AutoFillOnLoad    bool          `json:"auto_fill_on_load"`
	ShowNotifications bool          `json:"show_notifications"`
	SaveFormHistory   bool          `json:"save_form_history"`
	FieldMappings     FieldMappings `json:"field_mappings,omitempty"`
}

type ExtensionSettingsPatch struct {
	AutoFillOnLoad    *bool         `json:"auto_fill_on_load,omitempty"`
	ShowNotifications *bool         `json:"show_notifications,omitempty"`
	SaveFormHistory   *bool         `json:"save_form_history,omitempty"`
	FieldMappings     FieldMappings `json:"field_mappings,omitempty"`
}

func (p ExtensionSettingsPatch) Apply(s *ExtensionSettings) {
	if p.AutoFillOnLoad != nil {
		s.AutoFillOnLoad = *p.AutoFillOnLoad
	}
	if p.ShowNotifications != nil {
		s.ShowNotifications = *p.ShowNotifications
	}
	if p.SaveFormHistory != nil {
		s.SaveFormHistory = *p.SaveFormHistory
	}
	if p.FieldMappings != nil {
		s.FieldMappings = p.FieldMappings
	}
}

func (p ExtensionSettingsPatch) IsEmpty() bool {
	return p.AutoFillOnLoad == nil && p.ShowNotifications == nil && p.SaveFormHistory == nil && p.FieldMappings == nil
}

// NewDefaultExtensionSettings returns settings with every toggle enabled.
func NewDefaultExtensionSettings(userID string) *ExtensionSettings {
	return &ExtensionSettings{
		UserID:            userID,
		AutoFillOnLoad:    true,
		ShowNotifications: true,
		SaveFormHistory:   true,
	}
}

type ExtensionSettingsRepository interface {
	GetByUserID(ctx context.Context, userID string) (*ExtensionSettings, error)
	Create(ctx context.Context, settings *ExtensionSettings) error
	Update(ctx context.Context, userID string, patch ExtensionSettingsPatch) (*ExtensionSettings, error)
}

// ExtensionData is everything the browser extension needs in one round trip.
type ExtensionData struct {
	Profile       *Profile           `json:"profile"`
	Settings      *ExtensionSettings `json:"settings"`
	DefaultResume *Resume            `json:"default_resume,omitempty"`
}

type ExtensionUsecase interface {
	GetSettings(ctx context.Context, userID string) (*ExtensionSettings, error)
	SaveSettings(ctx context.Context, userID string, patch ExtensionSettingsPatch) (*ExtensionSettings, error)
	GetExtensionData(ctx context.Context, userID string) (*ExtensionData, error)
}
