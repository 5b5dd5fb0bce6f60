package models

import "time"

// Review is written once per completed booking and denormalized onto the equipment.
type Review struct {
	UserID   string    `json:"userId" bson:"userId"`
	UserName string    `json:"userName" bson:"userName"`
	Rating   int       `json:"rating" bson:"rating"`
	Comment  string    `json:"comment" bson:"comment"`
	Date     time.Time `json:"date" bson:"date"`
}

type Equipment struct {
	EquipmentID   string   `json:"equipmentId" bson:"equipmentId"`
	EquipmentName string   `json:"equipmentName" bson:"equipmentName"`
	Description   string   `json:"description" bson:"description"`
	Category      string   `json:"category" bson:"category"` // mobility, respiratory, daily-living, therapeutic, monitoring, beds, other
	PricePerDay   float64  `json:"pricePerDay" bson:"pricePerDay"`
	Stock         int      `json:"stock" bson:"stock"`
	IsAvailable   bool     `json:"isAvailable" bson:"isAvailable"`
	ImageURL      string   `json:"imageUrl" bson:"imageUrl"`
	ProviderID    string   `json:"providerId" bson:"providerId"`
	ProviderName  string   `json:"providerName" bson:"providerName"`
	Reviews       []Review `json:"reviews,omitempty" bson:"reviews,omitempty"`
	AverageRating float64  `json:"averageRating" bson:"averageRating"`
	TotalReviews  int      `json:"totalReviews" bson:"totalReviews"`

	ListingFeePaid   bool      `json:"listingFeePaid" bson:"listingFeePaid"`
	ListingFeeAmount float64   `json:"listingFeeAmount" bson:"listingFeeAmount"`
	IsListed         bool      `json:"isListed" bson:"isListed"`
	CreatedAt        time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt" bson:"updatedAt"`
}
