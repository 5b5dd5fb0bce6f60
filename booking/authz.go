package booking

import (
	"medirent/errs"
	"medirent/models"
)

// Who may pull which trigger. The delivery axis belongs to the provider
// (accepting, dispatching, completing); cancellation and the payment axis
// are open to either party of the booking.

// AuthorizeStatusUpdate allows only the booking's provider to advance the
// delivery axis.
func AuthorizeStatusUpdate(b *models.Booking, uid string) error {
	if uid != b.ProviderID {
		return errs.Forbidden("Only the booking's provider may update its status")
	}
	return nil
}

// AuthorizeCancel allows either party to cancel.
func AuthorizeCancel(b *models.Booking, uid string) error {
	if uid != b.PatientID && uid != b.ProviderID {
		return errs.Forbidden("Only the booking's patient or provider may cancel it")
	}
	return nil
}

// AuthorizeCODConfirm is stage-aware: choosing cash on delivery is the
// patient's move, confirming the collection is the provider's.
func AuthorizeCODConfirm(b *models.Booking, uid string) error {
	switch b.PaymentMethod {
	case "":
		if uid != b.PatientID {
			return errs.Forbidden("Only the booking's patient may choose cash on delivery")
		}
	case models.MethodCOD:
		if uid != b.ProviderID {
			return errs.Forbidden("Only the booking's provider may confirm a cash collection")
		}
	}
	return nil
}

// AuthorizePaymentUpdate allows either party to drive the payment axis.
func AuthorizePaymentUpdate(b *models.Booking, uid string) error {
	if uid != b.PatientID && uid != b.ProviderID {
		return errs.Forbidden("Only the booking's patient or provider may update its payment status")
	}
	return nil
}
