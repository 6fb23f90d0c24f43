package validator

import (
	"io"
	"testing"

	"stayhub/pkg/logger"
	"stayhub/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator() *BookingValidator {
	return NewBookingValidator(logger.New(logger.Config{
		Level:  logger.ERROR,
		Format: logger.TEXT,
		Output: io.Discard,
	}))
}

const (
	validUserID = "507f1f77bcf86cd799439011"
	validRoomID = "507f191e810c19729de860ea"
)

func TestValidateCreateParsesDates(t *testing.T) {
	v := newTestValidator()

	checkIn, checkOut, err := v.ValidateCreate(&model.BookingRequest{
		UserID:   validUserID,
		RoomID:   validRoomID,
		CheckIn:  "2024-01-10",
		CheckOut: "2024-01-12",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", checkIn.Format(model.DateLayout))
	assert.Equal(t, "2024-01-12", checkOut.Format(model.DateLayout))
	assert.Equal(t, 2, model.Nights(checkIn, checkOut))
}

func TestValidateCreateRejectsMissingFields(t *testing.T) {
	v := newTestValidator()

	_, _, err := v.ValidateCreate(&model.BookingRequest{
		CheckIn:  "2024-01-10",
		CheckOut: "2024-01-12",
	})
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := make([]string, 0, len(verrs))
	for _, ve := range verrs {
		fields = append(fields, ve.Field)
	}
	assert.Contains(t, fields, "UserID")
	assert.Contains(t, fields, "RoomID")
}

func TestValidateCreateRejectsBadIDs(t *testing.T) {
	v := newTestValidator()

	_, _, err := v.ValidateCreate(&model.BookingRequest{
		UserID:   "not-an-object-id",
		RoomID:   validRoomID,
		CheckIn:  "2024-01-10",
		CheckOut: "2024-01-12",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ObjectID")
}

func TestValidateCreateRejectsMalformedDates(t *testing.T) {
	v := newTestValidator()

	for _, tc := range []struct{ in, out string }{
		{"10/01/2024", "2024-01-12"},
		{"2024-01-10", "not-a-date"},
		{"2024-13-40", "2024-01-12"},
	} {
		_, _, err := v.ValidateCreate(&model.BookingRequest{
			UserID:   validUserID,
			RoomID:   validRoomID,
			CheckIn:  tc.in,
			CheckOut: tc.out,
		})
		assert.Error(t, err, "check_in=%s check_out=%s", tc.in, tc.out)
	}
}

func TestValidateCreateRequiresAtLeastOneNight(t *testing.T) {
	v := newTestValidator()

	// Same-day and inverted ranges are both zero-or-negative nights.
	for _, tc := range []struct{ in, out string }{
		{"2024-01-10", "2024-01-10"},
		{"2024-01-12", "2024-01-10"},
	} {
		_, _, err := v.ValidateCreate(&model.BookingRequest{
			UserID:   validUserID,
			RoomID:   validRoomID,
			CheckIn:  tc.in,
			CheckOut: tc.out,
		})
		require.Error(t, err, "check_in=%s check_out=%s", tc.in, tc.out)
		assert.Contains(t, err.Error(), "at least one night")
	}
}

func TestValidateDateChange(t *testing.T) {
	v := newTestValidator()

	checkIn, checkOut, err := v.ValidateDateChange(&model.DateChangeRequest{
		CheckIn:  "2024-02-01",
		CheckOut: "2024-02-05",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, model.Nights(checkIn, checkOut))

	_, _, err = v.ValidateDateChange(&model.DateChangeRequest{
		CheckIn:  "2024-02-05",
		CheckOut: "2024-02-01",
	})
	assert.Error(t, err)
}
