package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
)

const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// translateWriteError maps unique index violations onto dup and wraps
// everything else with op.
func translateWriteError(err error, op string, dup *appErrors.Error) error {
	if isUniqueViolation(err) {
		return appErrors.Wrap(err, dup.Code, dup.Status, dup.Message)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// translateLookupError reports an id that is not a valid UUID as a missing
// row; no such id can be stored.
func translateLookupError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == invalidTextRepresentation {
		return sql.ErrNoRows
	}
	return err
}
