package service

import (
	"database/sql"
	"errors"
	"time"

	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
)

const dateLayout = "2006-01-02"

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

// lookupError maps sql.ErrNoRows to NOT_FOUND and passes typed errors through.
func lookupError(err error, notFound, internal string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Internal(err, internal)
}

func parseDate(raw, field string) (time.Time, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, validationError(err, field+" must be formatted as YYYY-MM-DD")
	}
	return t, nil
}

func parseOptionalDate(raw, field string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := parseDate(raw, field)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// endOfDay makes an inclusive upper bound out of a calendar date.
func endOfDay(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	end := t.Add(24*time.Hour - time.Nanosecond)
	return &end
}
