package newsroom

import (
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// ParseUserID parses a token subject claim into a user id. A subject that
// is not a well formed UUID is an InvalidID error, not a lookup miss.
func ParseUserID(value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, goerrors.Wrap(err, ErrInvalidID.Category, ErrInvalidID.Message).
			WithTextCode(ErrInvalidID.TextCode)
	}
	return id, nil
}

// IsInvalidIDError reports whether err is a subject parse failure
func IsInvalidIDError(err error) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == ErrInvalidID.TextCode
	}
	return false
}
