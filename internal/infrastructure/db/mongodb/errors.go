package mongodb

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"tour-service/internal/apperrors"
)

// mapWriteError turns a unique index violation into a DuplicateKeyError
// with msg. Other errors become server errors.
func mapWriteError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return apperrors.NewDuplicateKeyError(msg, err)
	}
	return apperrors.NewServerError("database write failed", err)
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
