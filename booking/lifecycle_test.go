package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medirent/errs"
	"medirent/models"
)

func TestStatusTransitionTable(t *testing.T) {
	all := []models.BookingStatus{
		models.BookingPending, models.BookingConfirmed, models.BookingInProgress,
		models.BookingCompleted, models.BookingCancelled,
	}
	allowed := map[models.BookingStatus][]models.BookingStatus{
		models.BookingPending:    {models.BookingConfirmed, models.BookingCancelled},
		models.BookingConfirmed:  {models.BookingInProgress},
		models.BookingInProgress: {models.BookingCompleted},
		models.BookingCompleted:  {},
		models.BookingCancelled:  {},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, ValidStatusTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestTransitionStatusRejectsBackwardMoves(t *testing.T) {
	b := &models.Booking{Status: models.BookingCompleted}
	err := TransitionStatus(b, models.BookingPending)

	var typed *errs.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, errs.CodeIllegalStatusTransition, typed.Code)
	assert.Equal(t, models.BookingCompleted, b.Status, "state untouched on rejection")
}

func TestTransitionStatusCancelOnlyFromPending(t *testing.T) {
	b := &models.Booking{Status: models.BookingPending}
	require.NoError(t, TransitionStatus(b, models.BookingCancelled))

	for _, from := range []models.BookingStatus{models.BookingConfirmed, models.BookingInProgress, models.BookingCompleted} {
		b := &models.Booking{Status: from}
		assert.Error(t, TransitionStatus(b, models.BookingCancelled), "cancel from %s", from)
	}
}

func TestTransitionPaymentIndependentOfStatus(t *testing.T) {
	// a prepaid booking can be paid while delivery is still pending
	b := &models.Booking{Status: models.BookingPending, PaymentStatus: models.PaymentPending, PaymentMethod: models.MethodUPI}
	require.NoError(t, TransitionPayment(b, models.PaymentPaid))
	assert.Equal(t, models.PaymentPaid, b.PaymentStatus)
	assert.Equal(t, models.BookingPending, b.Status)

	require.NoError(t, TransitionPayment(b, models.PaymentRefunded))
	assert.Equal(t, models.PaymentRefunded, b.PaymentStatus)
}

func TestTransitionPaymentCODGatedOnCompletion(t *testing.T) {
	for _, status := range []models.BookingStatus{models.BookingPending, models.BookingConfirmed, models.BookingInProgress} {
		b := &models.Booking{Status: status, PaymentStatus: models.PaymentPending, PaymentMethod: models.MethodCOD}
		err := TransitionPayment(b, models.PaymentPaid)
		require.Error(t, err, "cod paid at %s", status)
		assert.Equal(t, models.PaymentPending, b.PaymentStatus)
	}

	b := &models.Booking{Status: models.BookingCompleted, PaymentStatus: models.PaymentPending, PaymentMethod: models.MethodCOD}
	require.NoError(t, TransitionPayment(b, models.PaymentPaid))
	assert.Equal(t, models.PaymentPaid, b.PaymentStatus)
}

func TestTransitionPaymentRejectsIllegalMoves(t *testing.T) {
	b := &models.Booking{PaymentStatus: models.PaymentRefunded}
	assert.Error(t, TransitionPayment(b, models.PaymentPaid))

	b = &models.Booking{PaymentStatus: models.PaymentPending}
	assert.Error(t, TransitionPayment(b, models.PaymentRefunded))
}

func TestAttachReviewRules(t *testing.T) {
	rev := models.BookingReview{Rating: 4, Comment: "steady wheels"}

	b := &models.Booking{Status: models.BookingInProgress}
	assert.Error(t, AttachReview(b, rev), "only completed bookings")

	b = &models.Booking{Status: models.BookingCompleted}
	require.NoError(t, AttachReview(b, rev))
	assert.True(t, b.HasReview)
	require.NotNil(t, b.Review)
	assert.Equal(t, 4, b.Review.Rating)

	assert.Error(t, AttachReview(b, rev), "reviews are immutable")

	b = &models.Booking{Status: models.BookingCompleted}
	assert.Error(t, AttachReview(b, models.BookingReview{Rating: 0}))
	assert.Error(t, AttachReview(b, models.BookingReview{Rating: 6}))
}

func TestTotalDays(t *testing.T) {
	days, err := TotalDays("2026-03-01", "2026-03-04")
	require.NoError(t, err)
	assert.Equal(t, 3, days)

	days, err = TotalDays("2026-03-01", "2026-03-02")
	require.NoError(t, err)
	assert.Equal(t, 1, days)

	_, err = TotalDays("2026-03-04", "2026-03-01")
	var typed *errs.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, errs.CodeInvalidDateRange, typed.Code)

	_, err = TotalDays("2026-03-01", "2026-03-01")
	assert.Error(t, err, "same-day rental is below the one-day minimum")

	_, err = TotalDays("not-a-date", "2026-03-01")
	assert.Error(t, err)
}
