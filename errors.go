package newsroom

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes surfaced to API clients in the error_code field. The two
// misspellings are load-bearing: clients match on them.
const (
	TextCodeInvalidUsername    = "INVALID_USERNAME"
	TextCodeInvalidEmail       = "INVALID_EMAIL"
	TextCodeInvalidPassword    = "INVALID_PASSOWRD"
	TextCodeInvalidPhone       = "INVALID_PHONE"
	TextCodeInvalidUserUUID    = "INVALID_USER_UUID"
	TextCodeInvalidToken       = "INVALID_TOKEN"
	TextCodeInvalidResetToken  = "INVALID_RESET_PASSOWORD_TOKEN"
	TextCodeInvalidLoginCreds  = "INVALID_LOGIN_CREDENTIALS"
	TextCodeEmailAlreadyUsed   = "USER_EMAIL_ALREADY_USED"
	TextCodeUsernameAlreadyUse = "USERNAME_ALREADY_USED"
	TextCodeUserNotExists      = "USER_NOT_EXISTS"
	TextCodeUserNotActive      = "USER_NOT_ACTIVE"
	TextCodeUserVerified       = "USER_ALREADY_VERIFIED"
	TextCodeEmptyPassword      = "EMPTY_PASSWORD"
)

// ErrInvalidLoginCredentials is the uniform failure for both unknown
// identifiers and wrong passwords. Callers must not branch on which.
var ErrInvalidLoginCredentials = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidLoginCreds)

// ErrUserNotExists is the lookup miss for direct id/email/username lookups.
// Verification and reset flows catch it and collapse to silent no-ops.
var ErrUserNotExists = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeUserNotExists)

// ErrUserInactive gates token issuance for deactivated accounts
var ErrUserInactive = goerrors.New("user is inactive", goerrors.CategoryAuth).
	WithTextCode(TextCodeUserNotActive)

// ErrUserAlreadyVerified rejects verification tokens for verified accounts
var ErrUserAlreadyVerified = goerrors.New("user already verified", goerrors.CategoryConflict).
	WithTextCode(TextCodeUserVerified)

// ErrInvalidVerifyToken is any verification token decode failure: bad
// signature, malformed, expired, or wrong audience.
var ErrInvalidVerifyToken = goerrors.New("invalid verify token", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken)

// ErrInvalidResetToken is any reset token failure, including the
// correlation mismatch against a superseded token.
var ErrInvalidResetToken = goerrors.New("invalid or expired reset password token", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidResetToken)

// ErrInvalidID is a subject claim that does not parse as a UUID
var ErrInvalidID = goerrors.New("invalid user id", goerrors.CategoryBadInput).
	WithTextCode(TextCodeInvalidUserUUID)

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// NewUserAlreadyExists reports a uniqueness collision. The text code tells
// the client which field collided; registration surfaces it verbatim.
func NewUserAlreadyExists(field string) *goerrors.Error {
	code := TextCodeEmailAlreadyUsed
	if field == "username" {
		code = TextCodeUsernameAlreadyUse
	}
	return goerrors.New("user "+field+" already used", goerrors.CategoryConflict).
		WithTextCode(code).
		WithMetadata(map[string]any{"field": field})
}

// NewValidationError builds a field-level validation failure
func NewValidationError(textCode string, messages ...string) *goerrors.Error {
	msg := "validation failed"
	if len(messages) > 0 {
		msg = messages[0]
	}
	err := goerrors.New(msg, goerrors.CategoryValidation).WithTextCode(textCode)
	if len(messages) > 1 {
		err = err.WithMetadata(map[string]any{"messages": messages})
	}
	return err
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
