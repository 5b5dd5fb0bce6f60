package models

// StockSnapshot is the ephemeral result of one availability check. It is
// derived fresh from the equipment collection and never cached beyond a
// single validation pass.
type StockSnapshot struct {
	ItemID        string  `json:"itemId"`
	EquipmentName string  `json:"equipmentName"`
	Available     bool    `json:"available"`
	CurrentStock  int     `json:"currentStock"`
	PricePerDay   float64 `json:"pricePerDay"`
	ImageURL      string  `json:"imageUrl,omitempty"`
	ProviderID    string  `json:"providerId,omitempty"`
	ProviderName  string  `json:"providerName,omitempty"`
}

// ValidationResult is StockSnapshot plus the requested quantity, produced
// per cart line by a batch validation.
type ValidationResult struct {
	ItemID       string  `json:"itemId"`
	ItemName     string  `json:"itemName"`
	Requested    int     `json:"requested"`
	Available    bool    `json:"available"`
	CurrentStock int     `json:"currentStock"`
	Shortfall    int     `json:"shortfall"`
	PricePerDay  float64 `json:"pricePerDay"`
}
