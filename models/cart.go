package models

import "time"

// CartItem is one equipment line in a user's cart.
type CartItem struct {
	ItemID       string    `json:"itemId" bson:"itemId"`
	ItemName     string    `json:"itemName" bson:"itemName"`
	Quantity     int       `json:"quantity" bson:"quantity"`
	PricePerDay  float64   `json:"pricePerDay" bson:"pricePerDay"`
	CurrentStock int       `json:"currentStock" bson:"currentStock"` // cached at last validation
	ImageURL     string    `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	ProviderID   string    `json:"providerId" bson:"providerId"`
	ProviderName string    `json:"providerName" bson:"providerName"`
	Selected     bool      `json:"selected" bson:"selected"`
	AddedAt      time.Time `json:"addedAt" bson:"addedAt"`
}

// Cart is the one persisted cart document a user owns.
type Cart struct {
	UserID    string     `json:"userId" bson:"userId"`
	Items     []CartItem `json:"items" bson:"items"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// Find returns a pointer into Items for itemID, or nil.
func (c *Cart) Find(itemID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ItemID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}

// Upsert merges quantity into an existing line or appends a new one.
// A touched line is always re-selected for checkout.
func (c *Cart) Upsert(item CartItem) {
	if existing := c.Find(item.ItemID); existing != nil {
		existing.Quantity += item.Quantity
		existing.CurrentStock = item.CurrentStock
		existing.PricePerDay = item.PricePerDay
		existing.Selected = true
		return
	}
	item.Selected = true
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now()
	}
	c.Items = append(c.Items, item)
}

// Remove drops the line for itemID; absent ids are a no-op.
func (c *Cart) Remove(itemID string) {
	for i := range c.Items {
		if c.Items[i].ItemID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return
		}
	}
}

// SetQuantity replaces a line's quantity; anything below 1 removes the line.
func (c *Cart) SetQuantity(itemID string, n int) {
	if n < 1 {
		c.Remove(itemID)
		return
	}
	if item := c.Find(itemID); item != nil {
		item.Quantity = n
	}
}

func (c *Cart) ToggleSelected(itemID string) {
	if item := c.Find(itemID); item != nil {
		item.Selected = !item.Selected
	}
}

func (c *Cart) SelectAll(selected bool) {
	for i := range c.Items {
		c.Items[i].Selected = selected
	}
}

func (c *Cart) SelectedItems() []CartItem {
	var out []CartItem
	for _, item := range c.Items {
		if item.Selected {
			out = append(out, item)
		}
	}
	return out
}

// RemoveByID drops every line whose id is in ids.
func (c *Cart) RemoveByID(ids []string) {
	for _, id := range ids {
		c.Remove(id)
	}
}

// Total is the per-day sum over all lines.
func (c *Cart) Total() float64 {
	var t float64
	for _, item := range c.Items {
		t += item.PricePerDay * float64(item.Quantity)
	}
	return t
}

// SelectedTotal is the per-day sum over selected lines only.
func (c *Cart) SelectedTotal() float64 {
	var t float64
	for _, item := range c.Items {
		if item.Selected {
			t += item.PricePerDay * float64(item.Quantity)
		}
	}
	return t
}

// Count sums quantities across all lines.
func (c *Cart) Count() int {
	var n int
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

func (c *Cart) SelectedCount() int {
	var n int
	for _, item := range c.Items {
		if item.Selected {
			n += item.Quantity
		}
	}
	return n
}
