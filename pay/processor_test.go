package pay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medirent/errs"
	"medirent/models"
)

func TestSimulateGateway(t *testing.T) {
	assert.NoError(t, simulateGateway(models.MethodUPI, ""))
	assert.NoError(t, simulateGateway(models.MethodCard, "success"))
	assert.NoError(t, simulateGateway(models.MethodNetBanking, ""))

	err := simulateGateway(models.MethodCard, "failure")
	var typed *errs.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, errs.CodePaymentDeclined, typed.Code)

	err = simulateGateway(models.MethodUPI, "network_error")
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, errs.CodeNetworkUnavailable, typed.Code)

	err = simulateGateway("barter", "")
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, errs.CodeInvalidRequest, typed.Code)
}

func TestApplyOutcomeSettlesWholeBatch(t *testing.T) {
	batch := []*models.Booking{
		{BookingID: "b1", Status: models.BookingPending, PaymentStatus: models.PaymentPending},
		{BookingID: "b2", Status: models.BookingConfirmed, PaymentStatus: models.PaymentPending},
	}

	require.NoError(t, ApplyOutcome(batch, models.MethodUPI, true))
	for _, b := range batch {
		assert.Equal(t, models.PaymentPaid, b.PaymentStatus, b.BookingID)
		assert.Equal(t, models.MethodUPI, b.PaymentMethod, b.BookingID)
	}
}

func TestApplyOutcomeDeclinedLeavesStateAlone(t *testing.T) {
	batch := []*models.Booking{
		{BookingID: "b1", PaymentStatus: models.PaymentPending},
	}

	err := ApplyOutcome(batch, models.MethodCard, false)
	var typed *errs.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, errs.CodePaymentDeclined, typed.Code)
	assert.Equal(t, models.PaymentPending, batch[0].PaymentStatus)
	assert.Empty(t, batch[0].PaymentMethod)
}

func TestApplyOutcomeAllOrNone(t *testing.T) {
	// second booking already paid: nothing in the batch may flip
	batch := []*models.Booking{
		{BookingID: "b1", Status: models.BookingPending, PaymentStatus: models.PaymentPending},
		{BookingID: "b2", Status: models.BookingPending, PaymentStatus: models.PaymentPaid},
	}

	err := ApplyOutcome(batch, models.MethodUPI, true)
	require.Error(t, err)
	assert.Equal(t, models.PaymentPending, batch[0].PaymentStatus)
	assert.Empty(t, batch[0].PaymentMethod)
}

func TestApplyOutcomeCODBlockedBeforeDelivery(t *testing.T) {
	batch := []*models.Booking{
		{BookingID: "b1", Status: models.BookingInProgress, PaymentStatus: models.PaymentPending},
	}

	err := ApplyOutcome(batch, models.MethodCOD, true)
	require.Error(t, err)
	assert.Equal(t, models.PaymentPending, batch[0].PaymentStatus)

	batch[0].Status = models.BookingCompleted
	require.NoError(t, ApplyOutcome(batch, models.MethodCOD, true))
	assert.Equal(t, models.PaymentPaid, batch[0].PaymentStatus)
}
