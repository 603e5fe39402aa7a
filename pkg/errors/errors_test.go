package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneMatchesSentinel(t *testing.T) {
	err := Clone(ErrInvalidInput, "total marks must be greater than zero")

	require.True(t, errors.Is(err, ErrInvalidInput))
	assert.False(t, errors.Is(err, ErrMalformedAnswer))
	assert.Equal(t, "total marks must be greater than zero", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, "invalid input", ErrInvalidInput.Message)
}

func TestWrappedCloneMatchesThroughFmt(t *testing.T) {
	err := fmt.Errorf("submit: %w", Clone(ErrDuplicateSubmission, ""))
	assert.True(t, errors.Is(err, ErrDuplicateSubmission))
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	require.NotNil(t, appErr)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Nil(t, FromError(nil))
}
