package validation_test

import (
	"errors"
	"testing"

	"go-autofill-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contact struct {
	Name     string `validate:"required,valid_name"`
	Phone    string `validate:"omitempty,valid_phone"`
	Username string `validate:"required,min=3,no_emoji"`
	Status   string `validate:"oneof=success partial failed"`
}

func TestCustomValidators(t *testing.T) {
	v := validation.New()

	valid := contact{Name: "Anne-Marie O'Neil", Phone: "+1 (555) 010-2030", Username: "amo", Status: "partial"}
	assert.NoError(t, v.Struct(valid))

	cases := map[string]contact{
		"digits in name":   {Name: "R2D2", Username: "droid", Status: "success"},
		"short phone":      {Name: "Ann", Phone: "12345", Username: "ann", Status: "success"},
		"letters in phone": {Name: "Ann", Phone: "555-CALL-NOW", Username: "ann", Status: "success"},
		"emoji username":   {Name: "Ann", Username: "ann🚀", Status: "success"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, v.Struct(c))
		})
	}
}

func TestNewIsShared(t *testing.T) {
	assert.Same(t, validation.New(), validation.New())
}

func TestFormatValidationErrors(t *testing.T) {
	err := validation.New().Struct(contact{Name: "", Username: "ab", Status: "unknown"})
	require.Error(t, err)

	messages := validation.FormatValidationErrors(err)
	assert.Contains(t, messages, "Name: is required")
	assert.Contains(t, messages, "Username: must be at least 3 characters")
	assert.Contains(t, messages, "Status: must be one of: success, partial, failed")
}

func TestFormatValidationErrorsPassesThroughOtherErrors(t *testing.T) {
	messages := validation.FormatValidationErrors(errors.New("boom"))
	assert.Equal(t, []string{"boom"}, messages)
}
