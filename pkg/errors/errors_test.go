package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := Conflict("room taken")
	assert.Equal(t, "CONFLICT: room taken", err.Error())

	wrapped := Internal("storage failed", errors.New("connection reset"))
	assert.Contains(t, wrapped.Error(), "INTERNAL_ERROR")
	assert.Contains(t, wrapped.Error(), "connection reset")
	assert.Equal(t, "connection reset", errors.Unwrap(wrapped).Error())
}

func TestStatusCodes(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
	}{
		{NotFound("Booking"), http.StatusNotFound},
		{Validation("bad input", nil), http.StatusUnprocessableEntity},
		{InvalidInput("bad id"), http.StatusBadRequest},
		{Conflict("overlap"), http.StatusConflict},
		{Internal("oops", nil), http.StatusInternalServerError},
		{Timeout("too slow"), http.StatusGatewayTimeout},
		{Unavailable("bookings"), http.StatusServiceUnavailable},
		{Overloaded(), http.StatusServiceUnavailable},
		{RateLimited(), http.StatusTooManyRequests},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.StatusCode(), "code %s", tc.err.Code)
	}
}

func TestOverloadedAndRateLimitedAreDistinct(t *testing.T) {
	assert.NotEqual(t, Overloaded().Code, RateLimited().Code)
	assert.True(t, IsCode(Overloaded(), CodeOverloaded))
	assert.True(t, IsCode(RateLimited(), CodeRateLimited))
	assert.False(t, IsCode(Overloaded(), CodeRateLimited))
}

func TestAsAppError(t *testing.T) {
	appErr := NotFoundWithID("Booking", "abc123")
	assert.Same(t, appErr, AsAppError(appErr))
	assert.Equal(t, "abc123", appErr.Details["id"])

	converted := AsAppError(errors.New("plain failure"))
	require.NotNil(t, converted)
	assert.Equal(t, CodeInternal, converted.Code)
	assert.Equal(t, http.StatusInternalServerError, converted.StatusCode())
}

func TestIsAppError(t *testing.T) {
	assert.True(t, IsAppError(Conflict("x")))
	assert.False(t, IsAppError(errors.New("x")))
	assert.False(t, IsAppError(nil))
}
