// Package stock reconciles what a user wants to rent with what the
// equipment collection currently reports. It is advisory: the booking
// creation path owns the authoritative decrement.
package stock

import (
	"context"
	"log"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"medirent/db"
	"medirent/models"
)

// FetchFunc resolves an equipment id to its current record.
type FetchFunc func(ctx context.Context, itemID string) (*models.Equipment, error)

type Validator struct {
	fetch FetchFunc
}

func NewValidator(fetch FetchFunc) *Validator {
	return &Validator{fetch: fetch}
}

// NewMongoValidator reads equipment straight from the collection.
func NewMongoValidator() *Validator {
	return NewValidator(func(ctx context.Context, itemID string) (*models.Equipment, error) {
		var eq models.Equipment
		err := db.EquipmentCollection.FindOne(ctx, bson.M{"equipmentId": itemID}).Decode(&eq)
		if err != nil {
			return nil, err
		}
		return &eq, nil
	})
}

// CheckAvailability never returns an error: a failed lookup degrades to an
// unavailable, zero-stock snapshot so callers always get a decidable result.
func (v *Validator) CheckAvailability(ctx context.Context, itemID string, requested int) models.StockSnapshot {
	eq, err := v.fetch(ctx, itemID)
	if err != nil {
		log.Println("stock check failed for", itemID, ":", err)
		return models.StockSnapshot{ItemID: itemID, Available: false, CurrentStock: 0}
	}
	return models.StockSnapshot{
		ItemID:        itemID,
		EquipmentName: eq.EquipmentName,
		Available:     eq.Stock >= requested,
		CurrentStock:  eq.Stock,
		PricePerDay:   eq.PricePerDay,
		ImageURL:      eq.ImageURL,
		ProviderID:    eq.ProviderID,
		ProviderName:  eq.ProviderName,
	}
}

// ValidateBatch checks every line concurrently and reports, per line,
// satisfiability, the shortfall if any, and the authoritative price.
// The validator's price always wins over the cart's cached one.
func (v *Validator) ValidateBatch(ctx context.Context, items []models.CartItem) []models.ValidationResult {
	results := make([]models.ValidationResult, len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item models.CartItem) {
			defer wg.Done()
			snap := v.CheckAvailability(ctx, item.ItemID, item.Quantity)

			price := snap.PricePerDay
			if price == 0 {
				price = item.PricePerDay
			}
			name := snap.EquipmentName
			if name == "" {
				name = item.ItemName
			}
			shortfall := 0
			if !snap.Available {
				shortfall = item.Quantity - snap.CurrentStock
			}
			results[i] = models.ValidationResult{
				ItemID:       item.ItemID,
				ItemName:     name,
				Requested:    item.Quantity,
				Available:    snap.Available,
				CurrentStock: snap.CurrentStock,
				Shortfall:    shortfall,
				PricePerDay:  price,
			}
		}(i, item)
	}
	wg.Wait()

	return results
}
