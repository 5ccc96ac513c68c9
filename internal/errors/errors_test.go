package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytor/swipequiz/internal/errors"
)

func TestAppError_Format(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: session not found: abc", errors.NewNotFoundError("session", "abc").Error())

	cause := stderrors.New("connection refused")
	err := errors.NewUpstreamError("submit", cause)
	assert.Equal(t, "UPSTREAM_ERROR: quiz api submit failed (connection refused)", err.Error())
	assert.Equal(t, http.StatusBadGateway, err.Status)
	assert.ErrorIs(t, err, cause)
}

func TestAs_FindsWrappedAppError(t *testing.T) {
	wrapped := fmt.Errorf("gesture: %w", errors.NewConflictError("deck exhausted"))

	appErr, ok := errors.As(wrapped)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeConflict, appErr.Code)
	assert.Equal(t, http.StatusConflict, appErr.Status)

	_, ok = errors.As(stderrors.New("plain"))
	assert.False(t, ok)
}
