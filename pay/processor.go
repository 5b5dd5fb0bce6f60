// Package pay settles bookings and listing fees against a simulated
// gateway. Success is recorded as one transaction covering every booking
// in the request; failures leave all payment state untouched.
package pay

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medirent/booking"
	"medirent/db"
	"medirent/errs"
	"medirent/models"
	"medirent/rdx"
	"medirent/utils"
)

const lockTTL = 30 * time.Second

func acquireLock(ref string) (bool, error) {
	return rdx.RdxSetNX("payment_lock:"+ref, "1", lockTTL)
}

func releaseLock(ref string) {
	if err := rdx.RdxDel("payment_lock:" + ref); err != nil {
		log.Printf("releaseLock: failed for %s, err=%v\n", ref, err)
	}
}

// simulateGateway stands in for a real payment provider. The simulate flag
// lets clients force an outcome: "failure" declines, "network_error" times
// out, anything else succeeds.
func simulateGateway(method, simulate string) error {
	switch simulate {
	case "failure", "declined":
		return errs.PaymentDeclined("simulated decline")
	case "network_error":
		return errs.New(errs.CodeNetworkUnavailable, "Payment gateway unreachable", "")
	}
	switch method {
	case models.MethodUPI, models.MethodCard, models.MethodNetBanking:
		return nil
	default:
		return errs.New(errs.CodeInvalidRequest, "Unsupported payment method", method)
	}
}

type processRequest struct {
	BookingID      string          `json:"bookingId"`
	BookingIDs     []string        `json:"bookingIds"`
	PaymentMethod  string          `json:"paymentMethod"`
	Simulate       string          `json:"simulate"`
	PaymentDetails json.RawMessage `json:"paymentDetails"`
}

func (p *processRequest) refs() []string {
	if len(p.BookingIDs) > 0 {
		return p.BookingIDs
	}
	if p.BookingID != "" {
		return []string{p.BookingID}
	}
	return nil
}

// ProcessPayment settles one or more bookings with a single transaction.
// Cash on delivery only records the method choice; collection is confirmed
// later through the booking's confirm-cod endpoint.
func ProcessPayment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	refs := req.refs()
	if len(refs) == 0 {
		http.Error(w, "bookingId or bookingIds is required", http.StatusBadRequest)
		return
	}

	ok, err := acquireLock(userID)
	if err != nil {
		log.Println("ProcessPayment lock error:", err)
		http.Error(w, "Payment service unavailable", http.StatusServiceUnavailable)
		return
	}
	if !ok {
		http.Error(w, "Another payment is already in progress", http.StatusConflict)
		return
	}
	defer releaseLock(userID)

	cur, err := db.BookingsCollection.Find(ctx, bson.M{"bookingId": bson.M{"$in": refs}})
	if err != nil {
		http.Error(w, "Failed to load bookings", http.StatusInternalServerError)
		return
	}
	var bookings []models.Booking
	if err := cur.All(ctx, &bookings); err != nil {
		http.Error(w, "Failed to load bookings", http.StatusInternalServerError)
		return
	}
	if len(bookings) != len(refs) {
		respondTyped(w, errs.NotFound("One or more bookings"))
		return
	}

	var total float64
	batch := make([]*models.Booking, len(bookings))
	for i := range bookings {
		b := &bookings[i]
		if b.PatientID != userID {
			http.Error(w, "Bookings belong to another user", http.StatusForbidden)
			return
		}
		if b.PaymentStatus != models.PaymentPending {
			respondTyped(w, errs.IllegalStatusTransition(string(b.PaymentStatus), string(models.PaymentPaid)))
			return
		}
		total += b.TotalAmount
		batch[i] = b
	}

	if req.PaymentMethod == models.MethodCOD {
		_, err := db.BookingsCollection.UpdateMany(ctx,
			bson.M{"bookingId": bson.M{"$in": refs}},
			bson.M{"$set": bson.M{"paymentMethod": models.MethodCOD, "updatedAt": time.Now()}},
		)
		if err != nil {
			http.Error(w, "Failed to record payment method", http.StatusInternalServerError)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"success":    true,
			"codPending": true,
			"bookingIds": refs,
			"amount":     total,
			"message":    "Cash on delivery selected; pay when your equipment arrives",
		})
		return
	}

	if err := simulateGateway(req.PaymentMethod, req.Simulate); err != nil {
		recordTransaction(ctx, "booking", refs, userID, total, req.PaymentMethod, "failed", err.Error())
		e := err.(*errs.Error)
		utils.RespondWithJSON(w, e.HTTPStatus(), utils.M{
			"success": false,
			"code":    e.Code,
			"message": e.Message,
			"amount":  total,
		})
		return
	}

	// The settlement rule decides the whole batch before anything persists:
	// every booking flips to paid in memory or none do.
	if err := ApplyOutcome(batch, req.PaymentMethod, true); err != nil {
		respondTyped(w, err)
		return
	}

	txn := recordTransaction(ctx, "booking", refs, userID, total, req.PaymentMethod, "completed", "")

	// One update covers every booking in the batch; the pending filter means
	// a concurrent settlement cannot double-pay any of them.
	res, err := db.BookingsCollection.UpdateMany(ctx,
		bson.M{"bookingId": bson.M{"$in": refs}, "paymentStatus": models.PaymentPending},
		bson.M{"$set": bson.M{
			"paymentStatus": models.PaymentPaid,
			"paymentMethod": req.PaymentMethod,
			"updatedAt":     time.Now(),
		}},
	)
	if err != nil || res.ModifiedCount != int64(len(refs)) {
		log.Printf("ProcessPayment: settlement mismatch txn=%s modified=%v err=%v\n", txn.TransactionID, res, err)
		http.Error(w, "Settlement failed", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":     true,
		"transaction": txn,
		"bookingIds":  refs,
		"amount":      total,
	})
}

func recordTransaction(ctx context.Context, refType string, refs []string, userID string, amount float64, method, status, notes string) *models.Transaction {
	txn := &models.Transaction{
		TransactionID: uuid.NewString(),
		ReferenceType: refType,
		ReferenceIDs:  refs,
		UserID:        userID,
		Amount:        amount,
		PaymentMethod: method,
		Status:        status,
		Notes:         notes,
		CreatedAt:     time.Now(),
	}
	if _, err := db.TransactionCollection.InsertOne(ctx, txn); err != nil {
		log.Println("recordTransaction insert error:", err)
	}
	return txn
}

// ListingFee charges a provider 5% of the daily price to list a piece of
// equipment. Success marks the fee paid; visibility is flipped separately
// by mark-listed.
func ListingFee(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		EquipmentID   string `json:"equipmentId"`
		PaymentMethod string `json:"paymentMethod"`
		Simulate      string `json:"simulate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if req.EquipmentID == "" {
		http.Error(w, "equipmentId is required", http.StatusBadRequest)
		return
	}

	var eq models.Equipment
	if err := db.EquipmentCollection.FindOne(ctx, bson.M{"equipmentId": req.EquipmentID}).Decode(&eq); err != nil {
		respondTyped(w, errs.NotFound("Equipment"))
		return
	}
	if eq.ProviderID != userID {
		http.Error(w, "Only the equipment's provider may pay its listing fee", http.StatusForbidden)
		return
	}
	if eq.ListingFeePaid {
		http.Error(w, "Listing fee already paid", http.StatusConflict)
		return
	}

	fee := eq.ListingFeeAmount
	if fee == 0 {
		fee = eq.PricePerDay * 0.05
	}

	if err := simulateGateway(req.PaymentMethod, req.Simulate); err != nil {
		recordTransaction(ctx, "listing_fee", []string{eq.EquipmentID}, userID, fee, req.PaymentMethod, "failed", err.Error())
		e := err.(*errs.Error)
		utils.RespondWithJSON(w, e.HTTPStatus(), utils.M{"success": false, "code": e.Code, "message": e.Message, "amount": fee})
		return
	}

	txn := recordTransaction(ctx, "listing_fee", []string{eq.EquipmentID}, userID, fee, req.PaymentMethod, "completed",
		fmt.Sprintf("listing fee for %s", eq.EquipmentName))

	_, err := db.EquipmentCollection.UpdateOne(ctx,
		bson.M{"equipmentId": eq.EquipmentID},
		bson.M{"$set": bson.M{"listingFeePaid": true, "listingFeeAmount": fee, "updatedAt": time.Now()}},
	)
	if err != nil {
		http.Error(w, "Failed to mark listing fee paid", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "transaction": txn, "amount": fee})
}

// ListTransactions returns the caller's transactions, newest first, paginated.
func ListTransactions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	if skip < 0 {
		skip = 0
	}

	findOptions := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetLimit(int64(limit)).
		SetSkip(int64(skip))

	cur, err := db.TransactionCollection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		log.Printf("ListTransactions: DB error for user %s, err=%v\n", userID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer cur.Close(ctx)

	txns := []models.Transaction{}
	if err = cur.All(ctx, &txns); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"transactions": txns})
}

func respondTyped(w http.ResponseWriter, err error) {
	if e, ok := err.(*errs.Error); ok {
		utils.RespondWithJSON(w, e.HTTPStatus(), utils.M{"success": false, "message": e.Message, "code": e.Code})
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// ApplyOutcome is the pure settlement rule: given the bookings a transaction
// covers and whether the gateway approved, it advances every booking's
// payment axis or none of them.
func ApplyOutcome(bookings []*models.Booking, method string, approved bool) error {
	if !approved {
		return errs.PaymentDeclined("gateway declined")
	}
	// Validate the whole batch before touching any of it.
	for _, b := range bookings {
		probe := *b
		probe.PaymentMethod = method
		if err := booking.TransitionPayment(&probe, models.PaymentPaid); err != nil {
			return err
		}
	}
	for _, b := range bookings {
		b.PaymentMethod = method
		_ = booking.TransitionPayment(b, models.PaymentPaid)
	}
	return nil
}
