package newsroom

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"
)

// usernameRegex: lowercase letter first, then lowercase letters, digits,
// underscores, or hyphens. Paired with the 5-20 length rule below.
var usernameRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]{2,19}$`)

const (
	usernameMinLen = 5
	usernameMaxLen = 20
	passwordMinLen = 8
)

// ValidateUsername enforces the username format and length policy
func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return NewValidationError(TextCodeInvalidUsername,
			"Username must start with a letter",
			"can only contain lowercase letters, numbers, underscores, or hyphens.",
		)
	}
	if len(username) < usernameMinLen || len(username) > usernameMaxLen {
		return NewValidationError(TextCodeInvalidUsername,
			"Username must be between 5 and 20 characters long",
		)
	}
	return nil
}

// ValidateEmail checks address shape; addresses are stored lowercased
func ValidateEmail(email string) error {
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return NewValidationError(TextCodeInvalidEmail, "Invalid email address")
	}
	return nil
}

// ValidatePassword enforces the password policy relative to the owning
// account: minimum length, and the password must not contain the account's
// email or username.
func ValidatePassword(password, email, username string) error {
	if len(password) < passwordMinLen {
		return NewValidationError(TextCodeInvalidPassword,
			"Password must be at least 8 characters long",
		)
	}
	if email != "" && strings.Contains(password, email) {
		return NewValidationError(TextCodeInvalidPassword,
			"Password should not contain email",
		)
	}
	if username != "" && strings.Contains(password, username) {
		return NewValidationError(TextCodeInvalidPassword,
			"Password should not contain username",
		)
	}
	return nil
}

// NormalizePhone parses an optional phone number and returns it in E.164.
// Empty input is fine; anything else must parse as a valid number.
func NormalizePhone(phone, defaultRegion string) (string, error) {
	if phone == "" {
		return "", nil
	}
	if defaultRegion == "" {
		defaultRegion = "US"
	}

	parsed, err := phonenumbers.Parse(phone, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return "", NewValidationError(TextCodeInvalidPhone, "Invalid phone number")
	}

	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

// NormalizeEmail lowercases and trims an email for storage and lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var slugStripRegex = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a title into a URL slug: lowercase, non-alphanumeric runs
// collapsed to single hyphens.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugStripRegex.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
