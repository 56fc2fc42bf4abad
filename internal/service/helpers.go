package service

import (
	"errors"
	"strconv"

	"backend/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func itoa(i int) string {
	return strconv.Itoa(i)
}

// parseID converts a command's aggregate id, rejecting garbage before any
// repository access.
func parseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation(apperr.FieldError{Field: field, Reason: "must be a valid UUID"})
	}
	return id, nil
}

// notFoundOr maps a repository miss to a domain NotFound, passing other
// failures through as internal.
func notFoundOr(err error, code, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(code, format, args...)
	}
	return apperr.Internal("%s", err.Error())
}

// checkUnique enforces natural-key uniqueness before creation. lookupErr is
// the result of a find-by-natural-key: nil means the key is taken.
func checkUnique(lookupErr error, code, format string, args ...interface{}) error {
	if lookupErr == nil {
		return apperr.Conflict(code, format, args...)
	}
	if !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
		return apperr.Internal("%s", lookupErr.Error())
	}
	return nil
}
