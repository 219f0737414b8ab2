package services

import (
	"errors"

	"servify-server/apperrors"
	"servify-server/database"
)

// dbError classifies a persistence error. Errors that already carry a kind
// pass through unchanged.
func dbError(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case database.IsNotFound(err):
		return apperrors.Wrap(apperrors.KindNotFound, message, err)
	case database.IsUniqueViolation(err):
		return apperrors.Wrap(apperrors.KindConflict, message, err)
	case database.IsSerializationFailure(err):
		return apperrors.Wrap(apperrors.KindConflict, "concurrent update, try again", err)
	case database.IsForeignKeyViolation(err):
		return apperrors.Wrap(apperrors.KindConflict, message, err)
	default:
		return apperrors.Internal(message, err)
	}
}

// notFound maps gorm.ErrRecordNotFound onto a NotFound error with message.
func notFound(err error, message string) error {
	if database.IsNotFound(err) {
		return apperrors.NotFound(message)
	}
	return dbError(err, message)
}
