package cart

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"medirent/errs"
	"medirent/models"
	"medirent/stock"
	"medirent/utils"
)

var validator = stock.NewMongoValidator()

func cartPayload(c *models.Cart) utils.M {
	return utils.M{
		"items":         c.Items,
		"total":         c.Total(),
		"selectedTotal": c.SelectedTotal(),
		"count":         c.Count(),
		"selectedCount": c.SelectedCount(),
	}
}

// GetCart returns the caller's persisted cart.
func GetCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	c, err := Load(ctx, userID)
	if err != nil {
		log.Println("GetCart load error:", err)
		http.Error(w, "Could not retrieve cart", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, cartPayload(c))
}

// AddItem merges a quantity into the cart after a live stock check. The
// check covers existing cart quantity plus the new request; a validator
// failure blocks the add (never silently allows).
func AddItem(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		ItemID   string `json:"itemId"`
		Quantity int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if body.ItemID == "" {
		http.Error(w, "itemId is required", http.StatusBadRequest)
		return
	}
	if body.Quantity < 1 {
		body.Quantity = 1
	}

	c, err := Load(ctx, userID)
	if err != nil {
		log.Println("AddItem load error:", err)
		http.Error(w, "Could not retrieve cart", http.StatusInternalServerError)
		return
	}

	existing := 0
	if line := c.Find(body.ItemID); line != nil {
		existing = line.Quantity
	}

	snap := validator.CheckAvailability(ctx, body.ItemID, existing+body.Quantity)
	if !snap.Available {
		e := errs.InsufficientStock(snap.EquipmentName, snap.CurrentStock, existing+body.Quantity)
		utils.RespondWithJSON(w, e.HTTPStatus(), e)
		return
	}

	c.Upsert(models.CartItem{
		ItemID:       body.ItemID,
		ItemName:     snap.EquipmentName,
		Quantity:     body.Quantity,
		PricePerDay:  snap.PricePerDay,
		CurrentStock: snap.CurrentStock,
		ImageURL:     snap.ImageURL,
		ProviderID:   snap.ProviderID,
		ProviderName: snap.ProviderName,
	})

	if err := Save(ctx, c); err != nil {
		log.Println("AddItem save error:", err)
		http.Error(w, "Failed to save cart", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, cartPayload(c))
}

// SetQuantity replaces a line's quantity. Below 1 removes the line;
// increases are stock-checked first.
func SetQuantity(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	itemID := ps.ByName("itemid")

	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	c, err := Load(ctx, userID)
	if err != nil {
		http.Error(w, "Could not retrieve cart", http.StatusInternalServerError)
		return
	}
	line := c.Find(itemID)
	if line == nil {
		http.Error(w, "Item not in cart", http.StatusNotFound)
		return
	}

	if body.Quantity >= 1 {
		snap := validator.CheckAvailability(ctx, itemID, body.Quantity)
		if !snap.Available {
			e := errs.InsufficientStock(snap.EquipmentName, snap.CurrentStock, body.Quantity)
			utils.RespondWithJSON(w, e.HTTPStatus(), e)
			return
		}
		line.CurrentStock = snap.CurrentStock
		if snap.PricePerDay > 0 {
			line.PricePerDay = snap.PricePerDay
		}
	}

	c.SetQuantity(itemID, body.Quantity)

	if err := Save(ctx, c); err != nil {
		http.Error(w, "Failed to save cart", http.StatusInternalServerError)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, cartPayload(c))
}

// RemoveItem deletes a line; removing an absent id is a no-op.
func RemoveItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	c, err := Load(ctx, userID)
	if err != nil {
		http.Error(w, "Could not retrieve cart", http.StatusInternalServerError)
		return
	}
	c.Remove(ps.ByName("itemid"))

	if err := Save(ctx, c); err != nil {
		http.Error(w, "Failed to save cart", http.StatusInternalServerError)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, cartPayload(c))
}

// ToggleSelected flips one line's checkout flag.
func ToggleSelected(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	c, err := Load(ctx, userID)
	if err != nil {
		http.Error(w, "Could not retrieve cart", http.StatusInternalServerError)
		return
	}
	c.ToggleSelected(ps.ByName("itemid"))

	if err := Save(ctx, c); err != nil {
		http.Error(w, "Failed to save cart", http.StatusInternalServerError)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, cartPayload(c))
}

// SelectAll sets every line's checkout flag at once.
func SelectAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		Selected bool `json:"selected"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	c, err := Load(ctx, userID)
	if err != nil {
		http.Error(w, "Could not retrieve cart", http.StatusInternalServerError)
		return
	}
	c.SelectAll(body.Selected)

	if err := Save(ctx, c); err != nil {
		http.Error(w, "Failed to save cart", http.StatusInternalServerError)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, cartPayload(c))
}

// ClearCart drops the whole cart document.
func ClearCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := Clear(ctx, userID); err != nil {
		http.Error(w, "Failed to clear cart", http.StatusInternalServerError)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// RefreshStock re-validates every line against live inventory and updates
// cached stock and prices in one pass.
func RefreshStock(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	c, err := Load(ctx, userID)
	if err != nil {
		http.Error(w, "Could not retrieve cart", http.StatusInternalServerError)
		return
	}

	results := validator.ValidateBatch(ctx, c.Items)
	for _, res := range results {
		if line := c.Find(res.ItemID); line != nil {
			line.CurrentStock = res.CurrentStock
			if res.PricePerDay > 0 {
				line.PricePerDay = res.PricePerDay
			}
		}
	}

	if err := Save(ctx, c); err != nil {
		http.Error(w, "Failed to save cart", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"items":      c.Items,
		"validation": results,
	})
}
