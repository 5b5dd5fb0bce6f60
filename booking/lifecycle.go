package booking

import (
	"medirent/errs"
	"medirent/models"
)

// The delivery axis is forward-only; cancelled is reachable from pending
// alone and terminal.
var statusNext = map[models.BookingStatus][]models.BookingStatus{
	models.BookingPending:    {models.BookingConfirmed, models.BookingCancelled},
	models.BookingConfirmed:  {models.BookingInProgress},
	models.BookingInProgress: {models.BookingCompleted},
	models.BookingCompleted:  {},
	models.BookingCancelled:  {},
}

// ValidStatusTransition reports whether status may move from -> to.
func ValidStatusTransition(from, to models.BookingStatus) bool {
	for _, next := range statusNext[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionStatus returns the typed failure for an illegal move so the
// caller's state is left untouched.
func TransitionStatus(b *models.Booking, to models.BookingStatus) error {
	if !ValidStatusTransition(b.Status, to) {
		return errs.IllegalStatusTransition(string(b.Status), string(to))
	}
	b.Status = to
	return nil
}

// TransitionPayment advances the payment axis. The two axes are independent
// except for cash on delivery, where collection is structurally gated on a
// completed delivery: a COD booking can only become paid once its status is
// completed.
func TransitionPayment(b *models.Booking, to models.PaymentStatus) error {
	switch {
	case b.PaymentStatus == models.PaymentPending && to == models.PaymentPaid:
		if b.PaymentMethod == models.MethodCOD && b.Status != models.BookingCompleted {
			return errs.New(errs.CodeIllegalStatusTransition,
				"Cash on delivery can be confirmed only after delivery is completed", "")
		}
		b.PaymentStatus = models.PaymentPaid
		return nil
	case b.PaymentStatus == models.PaymentPaid && to == models.PaymentRefunded:
		b.PaymentStatus = models.PaymentRefunded
		return nil
	default:
		return errs.IllegalStatusTransition(string(b.PaymentStatus), string(to))
	}
}

// AttachReview adds the one immutable review a completed booking may carry.
func AttachReview(b *models.Booking, rev models.BookingReview) error {
	if b.Status != models.BookingCompleted {
		return errs.New(errs.CodeIllegalStatusTransition,
			"Reviews can be written only for completed bookings", "")
	}
	if b.HasReview {
		return errs.New(errs.CodeInvalidRequest, "This booking already has a review", "")
	}
	if rev.Rating < 1 || rev.Rating > 5 {
		return errs.New(errs.CodeInvalidRequest, "Rating must be between 1 and 5", "")
	}
	b.Review = &rev
	b.HasReview = true
	return nil
}
