package validation

import (
	"regexp"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	// Letters, spaces and the punctuation found in real names: . ' - /
	nameRegex = regexp.MustCompile(`^[\p{L}\p{M} .'/-]+$`)

	// Optional leading +, then digits with common separators
	phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 ().-]*[0-9]$`)
)

var (
	shared     *validator.Validate
	sharedOnce sync.Once
)

// New returns a process-wide validator with the custom tags registered.
// Domain structs use these tags, so validating them with a bare
// validator.New() panics.
func New() *validator.Validate {
	sharedOnce.Do(func() {
		shared = validator.New()
		RegisterValidators(shared)
	})
	return shared
}

func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_name", ValidName)
	_ = v.RegisterValidation("valid_phone", ValidPhone)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
}

// ValidName rejects digits and symbols. Empty passes; pair with required.
func ValidName(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return nameRegex.MatchString(val)
}

// ValidPhone accepts 7 to 15 digits, optionally formatted.
func ValidPhone(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	if !phoneRegex.MatchString(val) {
		return false
	}
	digits := 0
	for _, r := range val {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 7 && digits <= 15
}

func NoEmoji(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		// Supplementary planes are mostly emoji and pictographs
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}
