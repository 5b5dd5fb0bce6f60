package booking

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"medirent/db"
	"medirent/errs"
	"medirent/models"
	"medirent/utils"
)

func genID() string {
	return "BKG" + utils.GenerateRandomDigitString(19)
}

// CreateRequest carries everything one booking needs; one request per
// distinct equipment line in a checkout batch.
type CreateRequest struct {
	PatientID       string  `json:"patientId"`
	PatientName     string  `json:"patientName"`
	EquipmentID     string  `json:"equipmentId"`
	EquipmentName   string  `json:"equipmentName"`
	ProviderID      string  `json:"providerId"`
	ProviderName    string  `json:"providerName"`
	Quantity        int     `json:"quantity"`
	StartDate       string  `json:"startDate"`
	EndDate         string  `json:"endDate"`
	PricePerDay     float64 `json:"pricePerDay"`
	DeliveryAddress string  `json:"deliveryAddress"`
	ContactPhone    string  `json:"contactPhone"`
	Notes           string  `json:"notes"`
}

// TotalDays counts whole rental days between two YYYY-MM-DD dates,
// rounding partial days up.
func TotalDays(startDate, endDate string) (int, error) {
	start, err1 := time.Parse("2006-01-02", startDate)
	end, err2 := time.Parse("2006-01-02", endDate)
	if err1 != nil || err2 != nil {
		return 0, errs.InvalidDateRange()
	}
	days := int(math.Ceil(end.Sub(start).Hours() / 24))
	if days < 1 {
		return 0, errs.InvalidDateRange()
	}
	return days, nil
}

// Create persists one booking. The stock decrement is a conditional update
// in the same operation that checks it, so two racing checkouts cannot both
// take the last unit; the loser gets a typed OutOfStock.
func Create(ctx context.Context, req CreateRequest) (*models.Booking, error) {
	if req.PatientID == "" || req.EquipmentID == "" || req.DeliveryAddress == "" || req.ContactPhone == "" {
		return nil, errs.New(errs.CodeInvalidRequest, "Missing required booking fields", "")
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	totalDays, err := TotalDays(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	// Authoritative price and provider identity come from the equipment
	// record, not the client payload.
	var eq models.Equipment
	if err := db.EquipmentCollection.FindOne(ctx, bson.M{"equipmentId": req.EquipmentID}).Decode(&eq); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errs.NotFound("Equipment")
		}
		return nil, err
	}

	res, err := db.EquipmentCollection.UpdateOne(ctx,
		bson.M{"equipmentId": req.EquipmentID, "stock": bson.M{"$gte": req.Quantity}},
		bson.M{"$inc": bson.M{"stock": -req.Quantity}, "$set": bson.M{"updatedAt": time.Now()}},
	)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, errs.OutOfStock(eq.EquipmentName, eq.Stock, req.Quantity)
	}

	// Flip availability off when the decrement drained the stock.
	_, _ = db.EquipmentCollection.UpdateOne(ctx,
		bson.M{"equipmentId": req.EquipmentID, "stock": bson.M{"$lte": 0}},
		bson.M{"$set": bson.M{"isAvailable": false}},
	)

	now := time.Now()
	b := &models.Booking{
		BookingID:       genID(),
		PatientID:       req.PatientID,
		PatientName:     req.PatientName,
		EquipmentID:     eq.EquipmentID,
		EquipmentName:   eq.EquipmentName,
		ProviderID:      eq.ProviderID,
		ProviderName:    eq.ProviderName,
		Quantity:        req.Quantity,
		PricePerDay:     eq.PricePerDay,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		TotalDays:       totalDays,
		TotalAmount:     eq.PricePerDay * float64(req.Quantity) * float64(totalDays),
		Status:          models.BookingPending,
		PaymentStatus:   models.PaymentPending,
		DeliveryAddress: req.DeliveryAddress,
		ContactPhone:    req.ContactPhone,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := db.BookingsCollection.InsertOne(ctx, b); err != nil {
		// Booking insert failed after the decrement took effect; give the
		// units back before reporting.
		restock(ctx, eq.EquipmentID, req.Quantity)
		return nil, err
	}

	EmitEvent(ctx, "booking-created", b)
	return b, nil
}

func restock(ctx context.Context, equipmentID string, qty int) {
	_, err := db.EquipmentCollection.UpdateOne(ctx,
		bson.M{"equipmentId": equipmentID},
		bson.M{"$inc": bson.M{"stock": qty}, "$set": bson.M{"isAvailable": true, "updatedAt": time.Now()}},
	)
	if err != nil {
		log.Println("restock failed for", equipmentID, ":", err)
	}
}

// CreateBooking is the HTTP face of Create.
func CreateBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if uid := utils.GetUserIDFromRequest(r); uid != "" {
		req.PatientID = uid
	}
	if req.PatientName == "" {
		req.PatientName = utils.GetUsernameFromRequest(r)
	}

	b, err := Create(ctx, req)
	if err != nil {
		if e, ok := err.(*errs.Error); ok {
			utils.RespondWithJSON(w, e.HTTPStatus(), utils.M{"success": false, "message": e.Message, "code": e.Code})
			return
		}
		log.Println("CreateBooking error:", err)
		http.Error(w, "Booking creation failed", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"success":   true,
		"bookingId": b.BookingID,
		"booking":   b,
	})
}
