package booking

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medirent/db"
	"medirent/errs"
	"medirent/models"
	"medirent/utils"
)

func findBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	var b models.Booking
	err := db.BookingsCollection.FindOne(ctx, bson.M{"bookingId": bookingID}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, errs.NotFound("Booking")
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func saveBooking(ctx context.Context, b *models.Booking) error {
	b.UpdatedAt = time.Now()
	_, err := db.BookingsCollection.ReplaceOne(ctx, bson.M{"bookingId": b.BookingID}, b)
	return err
}

func respondErr(w http.ResponseWriter, err error, fallback string) {
	if e, ok := err.(*errs.Error); ok {
		utils.RespondWithJSON(w, e.HTTPStatus(), utils.M{"success": false, "message": e.Message, "code": e.Code})
		return
	}
	log.Println(fallback+":", err)
	http.Error(w, fallback, http.StatusInternalServerError)
}

// GetBooking returns one booking by id.
func GetBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	b, err := findBooking(ctx, ps.ByName("id"))
	if err != nil {
		respondErr(w, err, "Failed to fetch booking")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "booking": b})
}

func listBookings(w http.ResponseWriter, r *http.Request, filter bson.M) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := db.BookingsCollection.Find(ctx, filter, opts)
	if err != nil {
		log.Println("Failed to list bookings:", err)
		http.Error(w, "Failed to list bookings", http.StatusInternalServerError)
		return
	}
	defer cur.Close(ctx)

	bookings := []models.Booking{}
	if err := cur.All(ctx, &bookings); err != nil {
		http.Error(w, "Failed to decode bookings", http.StatusInternalServerError)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "bookings": bookings, "count": len(bookings)})
}

// GetPatientBookings lists the requesting patient's bookings, newest first.
func GetPatientBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	uid := utils.GetUserIDFromRequest(r)
	listBookings(w, r, bson.M{"patientId": uid})
}

// GetProviderBookings lists bookings against the requesting provider's equipment.
func GetProviderBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	uid := utils.GetUserIDFromRequest(r)
	listBookings(w, r, bson.M{"providerId": uid})
}

// UpdateStatus moves a booking along the delivery axis.
func UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var payload struct {
		Status models.BookingStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	b, err := findBooking(ctx, ps.ByName("id"))
	if err != nil {
		respondErr(w, err, "Failed to fetch booking")
		return
	}
	if err := AuthorizeStatusUpdate(b, utils.GetUserIDFromRequest(r)); err != nil {
		respondErr(w, err, "Failed to update status")
		return
	}
	if payload.Status == models.BookingCancelled {
		http.Error(w, "Use the cancel endpoint to cancel a booking", http.StatusBadRequest)
		return
	}
	if err := TransitionStatus(b, payload.Status); err != nil {
		respondErr(w, err, "Failed to update status")
		return
	}
	if err := saveBooking(ctx, b); err != nil {
		respondErr(w, err, "Failed to update status")
		return
	}
	EmitEvent(ctx, "booking-status-changed", b)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "booking": b})
}

// CancelBooking cancels a pending booking, restocks its units, and records
// who cancelled and why.
func CancelBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var payload struct {
		CancelledBy string `json:"cancelledBy"`
		Reason      string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if payload.CancelledBy == "" {
		payload.CancelledBy = "patient"
	}

	b, err := findBooking(ctx, ps.ByName("id"))
	if err != nil {
		respondErr(w, err, "Failed to fetch booking")
		return
	}
	if err := AuthorizeCancel(b, utils.GetUserIDFromRequest(r)); err != nil {
		respondErr(w, err, "Failed to cancel booking")
		return
	}
	if err := TransitionStatus(b, models.BookingCancelled); err != nil {
		respondErr(w, err, "Failed to cancel booking")
		return
	}
	b.CancelledBy = payload.CancelledBy
	b.CancellationReason = payload.Reason

	if err := saveBooking(ctx, b); err != nil {
		respondErr(w, err, "Failed to cancel booking")
		return
	}
	restock(ctx, b.EquipmentID, b.Quantity)

	EmitEvent(ctx, "booking-cancelled", b)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "booking": b})
}

// ConfirmCOD is staged. On a booking with no payment method it records the
// cash-on-delivery choice and leaves payment pending. On a booking already
// marked COD it is the provider's collection confirmation, which the payment
// automaton rejects until delivery is completed.
func ConfirmCOD(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	b, err := findBooking(ctx, ps.ByName("id"))
	if err != nil {
		respondErr(w, err, "Failed to fetch booking")
		return
	}
	if err := AuthorizeCODConfirm(b, utils.GetUserIDFromRequest(r)); err != nil {
		respondErr(w, err, "Failed to confirm")
		return
	}

	switch b.PaymentMethod {
	case "":
		if b.PaymentStatus != models.PaymentPending {
			respondErr(w, errs.IllegalStatusTransition(string(b.PaymentStatus), string(models.PaymentPending)), "Failed to confirm")
			return
		}
		b.PaymentMethod = models.MethodCOD
	case models.MethodCOD:
		if err := TransitionPayment(b, models.PaymentPaid); err != nil {
			respondErr(w, err, "Failed to confirm collection")
			return
		}
	default:
		http.Error(w, "Booking is not cash on delivery", http.StatusBadRequest)
		return
	}

	if err := saveBooking(ctx, b); err != nil {
		respondErr(w, err, "Failed to confirm")
		return
	}
	EmitEvent(ctx, "booking-cod-updated", b)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "booking": b})
}

// UpdatePaymentStatus drives the payment axis directly (refunds, manual fixes).
func UpdatePaymentStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var payload struct {
		PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	b, err := findBooking(ctx, ps.ByName("id"))
	if err != nil {
		respondErr(w, err, "Failed to fetch booking")
		return
	}
	if err := AuthorizePaymentUpdate(b, utils.GetUserIDFromRequest(r)); err != nil {
		respondErr(w, err, "Failed to update payment status")
		return
	}
	if err := TransitionPayment(b, payload.PaymentStatus); err != nil {
		respondErr(w, err, "Failed to update payment status")
		return
	}
	if err := saveBooking(ctx, b); err != nil {
		respondErr(w, err, "Failed to update payment status")
		return
	}
	EmitEvent(ctx, "booking-payment-changed", b)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "booking": b})
}

// SubmitReview attaches the one review a completed booking may carry and
// denormalizes it onto the equipment record.
func SubmitReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var payload struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	b, err := findBooking(ctx, ps.ByName("id"))
	if err != nil {
		respondErr(w, err, "Failed to fetch booking")
		return
	}
	if uid := utils.GetUserIDFromRequest(r); uid != "" && uid != b.PatientID {
		http.Error(w, "Only the booking's patient may review it", http.StatusForbidden)
		return
	}

	rev := models.BookingReview{Rating: payload.Rating, Comment: payload.Comment, ReviewDate: time.Now()}
	if err := AttachReview(b, rev); err != nil {
		respondErr(w, err, "Failed to submit review")
		return
	}
	if err := saveBooking(ctx, b); err != nil {
		respondErr(w, err, "Failed to submit review")
		return
	}

	if err := denormalizeReview(ctx, b, rev); err != nil {
		log.Println("review denormalization failed:", err)
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"success": true, "booking": b})
}

// denormalizeReview appends the review onto the equipment document and
// recomputes its average rating.
func denormalizeReview(ctx context.Context, b *models.Booking, rev models.BookingReview) error {
	review := models.Review{
		UserID:   b.PatientID,
		UserName: b.PatientName,
		Rating:   rev.Rating,
		Comment:  rev.Comment,
		Date:     rev.ReviewDate,
	}
	_, err := db.EquipmentCollection.UpdateOne(ctx,
		bson.M{"equipmentId": b.EquipmentID},
		bson.M{"$push": bson.M{"reviews": review}},
	)
	if err != nil {
		return err
	}

	var eq models.Equipment
	if err := db.EquipmentCollection.FindOne(ctx, bson.M{"equipmentId": b.EquipmentID}).Decode(&eq); err != nil {
		return err
	}
	total := len(eq.Reviews)
	sum := 0
	for _, rv := range eq.Reviews {
		sum += rv.Rating
	}
	avg := 0.0
	if total > 0 {
		avg = float64(sum) / float64(total)
	}
	_, err = db.EquipmentCollection.UpdateOne(ctx,
		bson.M{"equipmentId": b.EquipmentID},
		bson.M{"$set": bson.M{"averageRating": avg, "totalReviews": total}},
	)
	return err
}
