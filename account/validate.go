package account

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/mymed-inc/mymed-api/schema"
	"github.com/mymed-inc/mymed-api/utils"
)

const (
	MinPasswordLength = 6
	MaxAge            = 150
)

var emailPattern = regexp.MustCompile(`^[A-Z0-9a-z._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// ValidationError is a user input problem found before any remote call
type ValidationError struct {
	Field     string
	MessageID string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Localize returns the message in the languages of localizer
func (e *ValidationError) Localize(localizer *i18n.Localizer) string {
	return utils.Localize(localizer, e.MessageID, e.Message)
}

var (
	errInvalidEmail = &ValidationError{
		Field:     "email",
		MessageID: "validation_email_invalid",
		Message:   "Invalid email address",
	}
	errShortPassword = &ValidationError{
		Field:     "password",
		MessageID: "validation_password_short",
		Message:   "Password must be at least 6 characters",
	}
	errInvalidAge = &ValidationError{
		Field:     "age",
		MessageID: "validation_age_invalid",
		Message:   "Age must be between 0 and 150",
	}
	errInvalidGender = &ValidationError{
		Field:     "gender",
		MessageID: "validation_gender_invalid",
		Message:   "Gender must be one of male, female or other",
	}
)

// ValidateEmail returns the trimmed email when it is well formed
func ValidateEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return "", errInvalidEmail
	}
	return email, nil
}

// ValidatePassword returns the trimmed password when it is long enough
func ValidatePassword(password string) (string, error) {
	password = strings.TrimSpace(password)
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return "", errShortPassword
	}
	return password, nil
}

// ValidateProfile checks the fields set on update. The email, when set, is
// trimmed in place.
func ValidateProfile(update *schema.ProfileUpdate) error {
	if update.Email != nil {
		email, err := ValidateEmail(*update.Email)
		if err != nil {
			return err
		}
		update.Email = &email
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		update.Name = &name
	}

	if update.Age != nil && (*update.Age < 0 || *update.Age > MaxAge) {
		return errInvalidAge
	}

	if update.Gender != nil {
		switch *update.Gender {
		case schema.GenderMale, schema.GenderFemale, schema.GenderOther:
		default:
			return errInvalidGender
		}
	}

	return nil
}
