// Package equipment is the inventory side of the marketplace: providers
// create and list items, patients browse what is listed and in stock.
package equipment

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
	"medirent/rdx"
	"medirent/utils"
)

const listCacheKey = "equipment:listed"
const listCacheTTL = 30 * time.Second

var categories = map[string]bool{
	"mobility": true, "respiratory": true, "daily-living": true,
	"therapeutic": true, "monitoring": true, "beds": true, "other": true,
}

func respondErr(w http.ResponseWriter, err error, fallback string) {
	if e, ok := err.(*errs.Error); ok {
		utils.RespondWithJSON(w, e.HTTPStatus(), utils.M{"success": false, "message": e.Message, "code": e.Code})
		return
	}
	log.Println(fallback+":", err)
	http.Error(w, fallback, http.StatusInternalServerError)
}

// GetAllEquipment lists equipment that is listed and available. The result
// is cached briefly in Redis; browse traffic tolerates slight staleness,
// availability checks never read this cache.
func GetAllEquipment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{"isListed": true, "isAvailable": true}
	if cat := r.URL.Query().Get("category"); cat != "" {
		filter["category"] = cat
	}
	if q := r.URL.Query().Get("q"); q != "" {
		filter["equipmentName"] = bson.M{"$regex": q, "$options": "i"}
	}
	unfiltered := len(filter) == 2

	if unfiltered {
		if cached, err := rdx.RdxGet(listCacheKey); err == nil && cached != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(cached))
			return
		}
	}

	cur, err := db.EquipmentCollection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		http.Error(w, "Failed to list equipment", http.StatusInternalServerError)
		return
	}
	defer cur.Close(ctx)

	items := []models.Equipment{}
	if err := cur.All(ctx, &items); err != nil {
		http.Error(w, "Failed to decode equipment", http.StatusInternalServerError)
		return
	}

	body := utils.M{"success": true, "equipment": items, "count": len(items)}

	// Only the unfiltered listing is cached.
	if unfiltered {
		if data, err := json.Marshal(body); err == nil {
			_ = rdx.RdxSet(listCacheKey, string(data), listCacheTTL)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, body)
}

func invalidateListCache() {
	if err := rdx.RdxDel(listCacheKey); err != nil {
		log.Println("equipment cache invalidation failed:", err)
	}
}

// GetEquipment returns one item fresh from the collection.
func GetEquipment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var eq models.Equipment
	err := db.EquipmentCollection.FindOne(ctx, bson.M{"equipmentId": ps.ByName("id")}).Decode(&eq)
	if err == mongo.ErrNoDocuments {
		respondErr(w, errs.NotFound("Equipment"), "")
		return
	}
	if err != nil {
		http.Error(w, "Failed to fetch equipment", http.StatusInternalServerError)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "equipment": eq})
}

// GetProviderEquipment lists the caller's own inventory, listed or not.
func GetProviderEquipment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	uid := utils.GetUserIDFromRequest(r)
	if uid == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	cur, err := db.EquipmentCollection.Find(ctx, bson.M{"providerId": uid},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		http.Error(w, "Failed to list equipment", http.StatusInternalServerError)
		return
	}
	defer cur.Close(ctx)

	items := []models.Equipment{}
	if err := cur.All(ctx, &items); err != nil {
		http.Error(w, "Failed to decode equipment", http.StatusInternalServerError)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "equipment": items, "count": len(items)})
}

// CreateEquipment adds an item to the provider's inventory. It stays
// unlisted (invisible to patients) until the listing fee is paid.
func CreateEquipment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	uid := utils.GetUserIDFromRequest(r)
	if uid == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		EquipmentName string  `json:"equipmentName"`
		Description   string  `json:"description"`
		Category      string  `json:"category"`
		PricePerDay   float64 `json:"pricePerDay"`
		Stock         int     `json:"stock"`
		ImageURL      string  `json:"imageUrl"`
		ProviderName  string  `json:"providerName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if body.EquipmentName == "" || body.PricePerDay <= 0 {
		http.Error(w, "equipmentName and a positive pricePerDay are required", http.StatusBadRequest)
		return
	}
	if !categories[body.Category] {
		body.Category = "other"
	}
	if body.Stock < 0 {
		body.Stock = 0
	}

	now := time.Now()
	eq := models.Equipment{
		EquipmentID:      "EQP" + utils.GenerateRandomDigitString(19),
		EquipmentName:    body.EquipmentName,
		Description:      body.Description,
		Category:         body.Category,
		PricePerDay:      body.PricePerDay,
		Stock:            body.Stock,
		IsAvailable:      body.Stock > 0,
		ImageURL:         body.ImageURL,
		ProviderID:       uid,
		ProviderName:     body.ProviderName,
		ListingFeeAmount: body.PricePerDay * 0.05,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if _, err := db.EquipmentCollection.InsertOne(ctx, eq); err != nil {
		log.Println("CreateEquipment insert error:", err)
		http.Error(w, "Failed to create equipment", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"success":    true,
		"equipment":  eq,
		"listingFee": eq.ListingFeeAmount,
	})
}

// UpdateEquipment lets the owning provider edit details and restock.
func UpdateEquipment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	uid := utils.GetUserIDFromRequest(r)
	if uid == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id := ps.ByName("id")

	var body struct {
		EquipmentName *string  `json:"equipmentName"`
		Description   *string  `json:"description"`
		Category      *string  `json:"category"`
		PricePerDay   *float64 `json:"pricePerDay"`
		Stock         *int     `json:"stock"`
		ImageURL      *string  `json:"imageUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if body.EquipmentName != nil {
		set["equipmentName"] = *body.EquipmentName
	}
	if body.Description != nil {
		set["description"] = *body.Description
	}
	if body.Category != nil && categories[*body.Category] {
		set["category"] = *body.Category
	}
	if body.PricePerDay != nil && *body.PricePerDay > 0 {
		set["pricePerDay"] = *body.PricePerDay
	}
	if body.Stock != nil && *body.Stock >= 0 {
		set["stock"] = *body.Stock
		set["isAvailable"] = *body.Stock > 0
	}
	if body.ImageURL != nil {
		set["imageUrl"] = *body.ImageURL
	}

	res, err := db.EquipmentCollection.UpdateOne(ctx,
		bson.M{"equipmentId": id, "providerId": uid},
		bson.M{"$set": set},
	)
	if err != nil {
		http.Error(w, "Failed to update equipment", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		respondErr(w, errs.NotFound("Equipment"), "")
		return
	}
	invalidateListCache()

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}

// MarkListed flips patient visibility on. Requires the listing fee first.
func MarkListed(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	uid := utils.GetUserIDFromRequest(r)
	if uid == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var eq models.Equipment
	err := db.EquipmentCollection.FindOne(ctx, bson.M{"equipmentId": ps.ByName("id")}).Decode(&eq)
	if err == mongo.ErrNoDocuments {
		respondErr(w, errs.NotFound("Equipment"), "")
		return
	}
	if err != nil {
		http.Error(w, "Failed to fetch equipment", http.StatusInternalServerError)
		return
	}
	if eq.ProviderID != uid {
		http.Error(w, "Only the equipment's provider may list it", http.StatusForbidden)
		return
	}
	if !eq.ListingFeePaid {
		http.Error(w, "Listing fee must be paid before listing", http.StatusConflict)
		return
	}

	_, err = db.EquipmentCollection.UpdateOne(ctx,
		bson.M{"equipmentId": eq.EquipmentID},
		bson.M{"$set": bson.M{"isListed": true, "updatedAt": time.Now()}},
	)
	if err != nil {
		http.Error(w, "Failed to mark equipment listed", http.StatusInternalServerError)
		return
	}
	invalidateListCache()

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true})
}
