package stock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medirent/models"
)

func fakeFetch(inventory map[string]*models.Equipment) FetchFunc {
	return func(_ context.Context, itemID string) (*models.Equipment, error) {
		eq, ok := inventory[itemID]
		if !ok {
			return nil, errors.New("not found")
		}
		return eq, nil
	}
}

func TestCheckAvailabilityReportsShortage(t *testing.T) {
	v := NewValidator(fakeFetch(map[string]*models.Equipment{
		"bed": {EquipmentID: "bed", EquipmentName: "Hospital Bed", Stock: 3, PricePerDay: 200},
	}))

	snap := v.CheckAvailability(context.Background(), "bed", 5)
	assert.False(t, snap.Available)
	assert.Equal(t, 3, snap.CurrentStock)
	assert.Equal(t, "Hospital Bed", snap.EquipmentName)

	snap = v.CheckAvailability(context.Background(), "bed", 3)
	assert.True(t, snap.Available)
}

func TestCheckAvailabilityDegradesOnFetchFailure(t *testing.T) {
	v := NewValidator(fakeFetch(nil))

	snap := v.CheckAvailability(context.Background(), "ghost", 1)
	assert.False(t, snap.Available)
	assert.Equal(t, 0, snap.CurrentStock)
	assert.Equal(t, "ghost", snap.ItemID)
}

func TestValidateBatch(t *testing.T) {
	v := NewValidator(fakeFetch(map[string]*models.Equipment{
		"bed":    {EquipmentID: "bed", EquipmentName: "Hospital Bed", Stock: 3, PricePerDay: 200},
		"walker": {EquipmentID: "walker", EquipmentName: "Walker", Stock: 10, PricePerDay: 30},
	}))

	items := []models.CartItem{
		{ItemID: "bed", ItemName: "Hospital Bed (cached)", Quantity: 5, PricePerDay: 180},
		{ItemID: "walker", Quantity: 2, PricePerDay: 25},
		{ItemID: "ghost", ItemName: "Gone Item", Quantity: 1, PricePerDay: 10},
	}

	results := v.ValidateBatch(context.Background(), items)
	require.Len(t, results, 3)

	bed := results[0]
	assert.False(t, bed.Available)
	assert.Equal(t, 2, bed.Shortfall)
	assert.Equal(t, 200.0, bed.PricePerDay, "live price wins over the cached one")

	walker := results[1]
	assert.True(t, walker.Available)
	assert.Equal(t, 0, walker.Shortfall)

	ghost := results[2]
	assert.False(t, ghost.Available)
	assert.Equal(t, "Gone Item", ghost.ItemName, "cart name kept when the fetch fails")
	assert.Equal(t, 10.0, ghost.PricePerDay, "cart price kept when the fetch fails")
}
