package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medirent/errs"
	"medirent/models"
)

func authzBooking() *models.Booking {
	return &models.Booking{
		BookingID:  "BKG1",
		PatientID:  "patient-1",
		ProviderID: "provider-1",
	}
}

func assertForbidden(t *testing.T, err error) {
	t.Helper()
	var typed *errs.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, errs.CodeForbidden, typed.Code)
}

func TestAuthorizeStatusUpdateProviderOnly(t *testing.T) {
	b := authzBooking()

	assert.NoError(t, AuthorizeStatusUpdate(b, "provider-1"))
	assertForbidden(t, AuthorizeStatusUpdate(b, "patient-1"))
	assertForbidden(t, AuthorizeStatusUpdate(b, "stranger"))
	assertForbidden(t, AuthorizeStatusUpdate(b, ""))
}

func TestAuthorizeCancelEitherParty(t *testing.T) {
	b := authzBooking()

	assert.NoError(t, AuthorizeCancel(b, "patient-1"))
	assert.NoError(t, AuthorizeCancel(b, "provider-1"))
	assertForbidden(t, AuthorizeCancel(b, "stranger"))
}

func TestAuthorizeCODConfirmStages(t *testing.T) {
	// choosing cash on delivery is the patient's move
	b := authzBooking()
	assert.NoError(t, AuthorizeCODConfirm(b, "patient-1"))
	assertForbidden(t, AuthorizeCODConfirm(b, "provider-1"))
	assertForbidden(t, AuthorizeCODConfirm(b, "stranger"))

	// confirming the collection is the provider's
	b.PaymentMethod = models.MethodCOD
	assert.NoError(t, AuthorizeCODConfirm(b, "provider-1"))
	assertForbidden(t, AuthorizeCODConfirm(b, "patient-1"))
	assertForbidden(t, AuthorizeCODConfirm(b, "stranger"))
}

func TestAuthorizePaymentUpdateEitherParty(t *testing.T) {
	b := authzBooking()

	assert.NoError(t, AuthorizePaymentUpdate(b, "patient-1"))
	assert.NoError(t, AuthorizePaymentUpdate(b, "provider-1"))
	assertForbidden(t, AuthorizePaymentUpdate(b, "stranger"))
	assertForbidden(t, AuthorizePaymentUpdate(b, ""))
}
