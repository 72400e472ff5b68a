package domain_test

import (
	"testing"

	"go-autofill-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func intPtr(i int) *int       { return &i }

func TestUserPatchKeepsAbsentFields(t *testing.T) {
	user := &domain.User{
		Username: "jdoe",
		Email:    "jdoe@example.com",
		Name:     "John Doe",
		Phone:    strPtr("+15550001111"),
	}

	domain.UserPatch{Location: strPtr("Berlin")}.Apply(user)

	assert.Equal(t, "John Doe", user.Name)
	assert.Equal(t, "jdoe@example.com", user.Email)
	assert.Equal(t, "+15550001111", *user.Phone)
	assert.Equal(t, "Berlin", *user.Location)
}

func TestProfilePatch(t *testing.T) {
	t.Run("Merges only present fields", func(t *testing.T) {
		profile := domain.NewDefaultProfile(&domain.User{ID: "u1", Name: "Jane", Email: "jane@example.com"})
		skills := []string{"Go", "SQL"}

		domain.ProfilePatch{Skills: &skills, CompletionPercentage: intPtr(60)}.Apply(profile)

		assert.Equal(t, "Jane", profile.PersonalInfo.Name)
		assert.Equal(t, []string{"Go", "SQL"}, profile.Skills)
		assert.Equal(t, 60, profile.CompletionPercentage)
		assert.Empty(t, profile.WorkExperience)
	})

	t.Run("ToProfile starts from empty collections", func(t *testing.T) {
		profile := domain.ProfilePatch{}.ToProfile("u2")
		assert.Equal(t, "u2", profile.UserID)
		assert.NotNil(t, profile.Skills)
		assert.NotNil(t, profile.Education)
		assert.Zero(t, profile.CompletionPercentage)
	})
}

func TestNewDefaultProfileCopiesUserInfo(t *testing.T) {
	user := &domain.User{
		ID:              "u1",
		Name:            "Jane",
		Email:           "jane@example.com",
		Location:        strPtr("Lisbon"),
		CurrentPosition: strPtr("Engineer"),
	}
	profile := domain.NewDefaultProfile(user)

	assert.Equal(t, "u1", profile.UserID)
	assert.Equal(t, "Lisbon", profile.PersonalInfo.Location)
	assert.Equal(t, "Engineer", profile.PersonalInfo.CurrentPosition)
	assert.Equal(t, "", profile.PersonalInfo.Phone)
	assert.Equal(t, domain.DefaultProfileCompletion, profile.CompletionPercentage)
}

func TestExtensionSettingsPatch(t *testing.T) {
	settings := domain.NewDefaultExtensionSettings("u1")
	domain.ExtensionSettingsPatch{ShowNotifications: boolPtr(false)}.Apply(settings)

	assert.True(t, settings.AutoFillOnLoad)
	assert.False(t, settings.ShowNotifications)
	assert.True(t, settings.SaveFormHistory)
}

func TestStatisticsPatch(t *testing.T) {
	stats := &domain.Statistics{ApplicationsFilled: 3, SuccessRate: 33, TimeSaved: 15}
	domain.StatisticsPatch{TimeSaved: intPtr(20)}.Apply(stats)

	assert.Equal(t, 3, stats.ApplicationsFilled)
	assert.Equal(t, 33, stats.SuccessRate)
	assert.Equal(t, 20, stats.TimeSaved)
}
