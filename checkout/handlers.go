package checkout

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"

	"medirent/booking"
	"medirent/cart"
	"medirent/db"
	"medirent/errs"
	"medirent/models"
	"medirent/utils"
)

var orchestrator = NewOrchestrator(booking.Create, func(ctx context.Context, itemID string) (*models.Equipment, error) {
	var eq models.Equipment
	if err := db.EquipmentCollection.FindOne(ctx, bson.M{"equipmentId": itemID}).Decode(&eq); err != nil {
		return nil, err
	}
	return &eq, nil
})

type checkoutPayload struct {
	StartDate       string `json:"startDate"`
	EndDate         string `json:"endDate"`
	DeliveryAddress string `json:"deliveryAddress"`
	ContactPhone    string `json:"contactPhone"`
	Notes           string `json:"notes"`
	PatientName     string `json:"patientName"`
}

func (p checkoutPayload) shared(userID string) booking.CreateRequest {
	return booking.CreateRequest{
		PatientID:       userID,
		PatientName:     p.PatientName,
		StartDate:       p.StartDate,
		EndDate:         p.EndDate,
		DeliveryAddress: p.DeliveryAddress,
		ContactPhone:    p.ContactPhone,
		Notes:           p.Notes,
	}
}

func respondBatch(w http.ResponseWriter, res BatchResult) {
	if res.Outcome == AllFailed {
		status := http.StatusInternalServerError
		message := "No bookings could be created"
		if e, ok := res.FirstError.(*errs.Error); ok {
			status = e.HTTPStatus()
			message = e.Message
		}
		utils.RespondWithJSON(w, status, utils.M{
			"success": false,
			"outcome": res.Outcome,
			"message": message,
			"failed":  res.Failed,
		})
		return
	}

	body := utils.M{
		"success":    true,
		"outcome":    res.Outcome,
		"bookingId":  res.BookingIDs[0],
		"bookingIds": res.BookingIDs,
		"bookings":   res.Bookings,
	}
	if res.Outcome == PartialFailure {
		body["failed"] = res.Failed
		if e, ok := res.FirstError.(*errs.Error); ok {
			body["message"] = e.Message
		}
		body["code"] = errs.CodePartialBookingFailure
	}
	utils.RespondWithJSON(w, http.StatusCreated, body)
}

// Checkout books every selected cart line. Lines that book are removed from
// the cart; failed lines stay so the user can retry them.
func Checkout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var payload checkoutPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if payload.PatientName == "" {
		payload.PatientName = utils.GetUsernameFromRequest(r)
	}
	if _, err := booking.TotalDays(payload.StartDate, payload.EndDate); err != nil {
		respondTyped(w, err)
		return
	}

	c, err := cart.Load(ctx, userID)
	if err != nil {
		log.Println("Checkout cart load error:", err)
		http.Error(w, "Could not retrieve cart", http.StatusInternalServerError)
		return
	}
	selected := c.SelectedItems()
	if len(selected) == 0 {
		respondTyped(w, errs.NoItemsSelected())
		return
	}

	if conflicts := orchestrator.PreCheck(ctx, selected); len(conflicts) > 0 {
		utils.RespondWithJSON(w, http.StatusConflict, utils.M{
			"success":   false,
			"code":      errs.CodeStockConflict,
			"message":   "Some selected items are no longer available in the requested quantity",
			"conflicts": conflicts,
		})
		return
	}

	res := orchestrator.Run(ctx, selected, payload.shared(userID))

	if len(res.BookingIDs) > 0 {
		booked := make([]string, 0, len(res.Bookings))
		for _, b := range res.Bookings {
			booked = append(booked, b.EquipmentID)
		}
		c.RemoveByID(booked)
		if err := cart.Save(ctx, c); err != nil {
			log.Println("Checkout cart cleanup error:", err)
		}
	}

	respondBatch(w, res)
}

// CheckoutNow books a single item directly, bypassing the cart entirely.
func CheckoutNow(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var payload struct {
		checkoutPayload
		EquipmentID string `json:"equipmentId"`
		Quantity    int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if payload.EquipmentID == "" {
		http.Error(w, "equipmentId is required", http.StatusBadRequest)
		return
	}
	if payload.Quantity < 1 {
		payload.Quantity = 1
	}
	if payload.PatientName == "" {
		payload.PatientName = utils.GetUsernameFromRequest(r)
	}

	req := payload.shared(userID)
	req.EquipmentID = payload.EquipmentID
	req.Quantity = payload.Quantity

	b, err := booking.Create(ctx, req)
	if err != nil {
		respondTyped(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"success":    true,
		"outcome":    AllSucceeded,
		"bookingId":  b.BookingID,
		"bookingIds": []string{b.BookingID},
		"bookings":   []*models.Booking{b},
	})
}

func respondTyped(w http.ResponseWriter, err error) {
	if e, ok := err.(*errs.Error); ok {
		utils.RespondWithJSON(w, e.HTTPStatus(), utils.M{"success": false, "message": e.Message, "code": e.Code})
		return
	}
	log.Println("checkout error:", err)
	http.Error(w, "Checkout failed", http.StatusInternalServerError)
}
