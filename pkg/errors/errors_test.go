package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Is(t *testing.T) {
	err := fmt.Errorf("state tracker: %w", ErrUnavailable.WithMessage("scoreboard not ready"))

	assert.True(t, IsUnavailable(err))
	assert.False(t, IsNotFound(err))
	assert.Equal(t, http.StatusServiceUnavailable, ToHTTPStatus(err))
}

func TestError_WithDetailDoesNotMutateSentinel(t *testing.T) {
	_ = ErrValidation.WithDetail("field", "name")
	assert.Empty(t, ErrValidation.Details)
}

func TestError_Retryable(t *testing.T) {
	assert.True(t, ErrUnavailable.IsRetryable())
	assert.False(t, ErrValidation.IsRetryable())
	assert.True(t, ErrValidation.IsFatal())
	assert.False(t, ErrValidation.AsRetryable().IsFatal())
}

func TestToErrorResponse(t *testing.T) {
	resp := ToErrorResponse(errors.New("boom"))
	assert.Equal(t, "INTERNAL_ERROR", resp["error_code"])

	resp = ToErrorResponse(ErrNotFound.WithMessage("rule not found"))
	assert.Equal(t, "NOT_FOUND", resp["error_code"])
	assert.Equal(t, "rule not found", resp["error"])
}

func TestSafely(t *testing.T) {
	err := Safely(func() error {
		panic("nil scoreboard")
	})
	require.Error(t, err)

	var appErr *Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.True(t, appErr.IsFatal())
	assert.Equal(t, true, appErr.Details["panic"])

	assert.NoError(t, Safely(func() error { return nil }))
}
