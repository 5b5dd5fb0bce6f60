package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestCartUpsertMergesExistingLine(t *testing.T) {
	c := &Cart{UserID: "u1"}
	c.Upsert(CartItem{ItemID: "wheelchair", ItemName: "Wheelchair", Quantity: 1, PricePerDay: 50, CurrentStock: 5})
	c.Upsert(CartItem{ItemID: "wheelchair", ItemName: "Wheelchair", Quantity: 2, PricePerDay: 55, CurrentStock: 4})

	require.Len(t, c.Items, 1)
	line := c.Items[0]
	assert.Equal(t, 3, line.Quantity)
	assert.Equal(t, 55.0, line.PricePerDay, "merge refreshes the cached price")
	assert.Equal(t, 4, line.CurrentStock)
	assert.True(t, line.Selected)
}

func TestCartUpsertKeepsLinesDistinct(t *testing.T) {
	c := &Cart{UserID: "u1"}
	c.Upsert(CartItem{ItemID: "wheelchair", Quantity: 1, PricePerDay: 50})
	c.Upsert(CartItem{ItemID: "oxygen-concentrator", Quantity: 2, PricePerDay: 120})

	require.Len(t, c.Items, 2)
	assert.Equal(t, 3, c.Count())
}

func TestCartRemoveIsIdempotent(t *testing.T) {
	c := &Cart{UserID: "u1"}
	c.Upsert(CartItem{ItemID: "walker", Quantity: 1})

	c.Remove("walker")
	assert.Empty(t, c.Items)

	c.Remove("walker") // absent id is a no-op
	assert.Empty(t, c.Items)
}

func TestCartSetQuantityBelowOneRemoves(t *testing.T) {
	c := &Cart{UserID: "u1"}
	c.Upsert(CartItem{ItemID: "walker", Quantity: 3})

	c.SetQuantity("walker", 0)
	assert.Nil(t, c.Find("walker"))

	c.Upsert(CartItem{ItemID: "walker", Quantity: 3})
	c.SetQuantity("walker", 2)
	require.NotNil(t, c.Find("walker"))
	assert.Equal(t, 2, c.Find("walker").Quantity)
}

func TestCartSelectionTotals(t *testing.T) {
	c := &Cart{UserID: "u1"}
	c.Upsert(CartItem{ItemID: "a", Quantity: 2, PricePerDay: 100})
	c.Upsert(CartItem{ItemID: "b", Quantity: 1, PricePerDay: 40})

	assert.Equal(t, 240.0, c.Total())
	assert.Equal(t, 240.0, c.SelectedTotal(), "new lines start selected")

	c.ToggleSelected("b")
	assert.Equal(t, 200.0, c.SelectedTotal())
	assert.Equal(t, 2, c.SelectedCount())
	require.Len(t, c.SelectedItems(), 1)
	assert.Equal(t, "a", c.SelectedItems()[0].ItemID)

	c.SelectAll(false)
	assert.Equal(t, 0.0, c.SelectedTotal())
	assert.Empty(t, c.SelectedItems())

	c.SelectAll(true)
	assert.Equal(t, 240.0, c.SelectedTotal())
}

func TestCartRemoveByID(t *testing.T) {
	c := &Cart{UserID: "u1"}
	c.Upsert(CartItem{ItemID: "a", Quantity: 1})
	c.Upsert(CartItem{ItemID: "b", Quantity: 1})
	c.Upsert(CartItem{ItemID: "c", Quantity: 1})

	c.RemoveByID([]string{"a", "c", "missing"})
	require.Len(t, c.Items, 1)
	assert.Equal(t, "b", c.Items[0].ItemID)
}

func TestCartTouchedLineIsReselected(t *testing.T) {
	c := &Cart{UserID: "u1"}
	c.Upsert(CartItem{ItemID: "a", Quantity: 1})
	c.ToggleSelected("a")
	assert.False(t, c.Items[0].Selected)

	c.Upsert(CartItem{ItemID: "a", Quantity: 1})
	assert.True(t, c.Items[0].Selected)
}

func TestCartBsonRoundTripPreservesLines(t *testing.T) {
	c := &Cart{UserID: "u1"}
	c.Upsert(CartItem{ItemID: "bed", ItemName: "Hospital Bed", Quantity: 2, PricePerDay: 200, CurrentStock: 4, ProviderID: "p1", ProviderName: "MediSupply"})
	c.Upsert(CartItem{ItemID: "walker", ItemName: "Walker", Quantity: 1, PricePerDay: 30, CurrentStock: 9, ProviderID: "p2", ProviderName: "CareRent"})
	c.ToggleSelected("walker")

	data, err := bson.Marshal(c)
	require.NoError(t, err)

	var got Cart
	require.NoError(t, bson.Unmarshal(data, &got))

	assert.Equal(t, c.UserID, got.UserID)
	require.Len(t, got.Items, 2)
	for i, want := range c.Items {
		line := got.Items[i]
		assert.Equal(t, want.ItemID, line.ItemID)
		assert.Equal(t, want.ItemName, line.ItemName)
		assert.Equal(t, want.Quantity, line.Quantity)
		assert.Equal(t, want.PricePerDay, line.PricePerDay)
		assert.Equal(t, want.CurrentStock, line.CurrentStock)
		assert.Equal(t, want.Selected, line.Selected, "selection flag for %s", want.ItemID)
	}
	assert.True(t, got.Items[0].Selected)
	assert.False(t, got.Items[1].Selected)
	assert.Equal(t, c.SelectedTotal(), got.SelectedTotal())
}
