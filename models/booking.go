package models

import "time"

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in-progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Payment methods; empty means the patient has not chosen yet.
const (
	MethodUPI        = "upi"
	MethodCard       = "card"
	MethodNetBanking = "netbanking"
	MethodCOD        = "cod"
)

// BookingReview is the single, immutable review a completed booking may carry.
type BookingReview struct {
	Rating     int       `json:"rating" bson:"rating"`
	Comment    string    `json:"comment" bson:"comment"`
	ReviewDate time.Time `json:"reviewDate" bson:"reviewDate"`
}

type Booking struct {
	BookingID     string  `json:"bookingId" bson:"bookingId"`
	PatientID     string  `json:"patientId" bson:"patientId"`
	PatientName   string  `json:"patientName" bson:"patientName"`
	EquipmentID   string  `json:"equipmentId" bson:"equipmentId"`
	EquipmentName string  `json:"equipmentName" bson:"equipmentName"`
	ProviderID    string  `json:"providerId" bson:"providerId"`
	ProviderName  string  `json:"providerName" bson:"providerName"`
	Quantity      int     `json:"quantity" bson:"quantity"`
	PricePerDay   float64 `json:"pricePerDay" bson:"pricePerDay"`
	StartDate     string  `json:"startDate" bson:"startDate"` // YYYY-MM-DD
	EndDate       string  `json:"endDate" bson:"endDate"`
	TotalDays     int     `json:"totalDays" bson:"totalDays"`
	TotalAmount   float64 `json:"totalAmount" bson:"totalAmount"`

	Status        BookingStatus `json:"status" bson:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus" bson:"paymentStatus"`
	PaymentMethod string        `json:"paymentMethod" bson:"paymentMethod"` // empty until chosen

	DeliveryAddress string `json:"deliveryAddress" bson:"deliveryAddress"`
	ContactPhone    string `json:"contactPhone" bson:"contactPhone"`
	Notes           string `json:"notes" bson:"notes"`

	CancelledBy        string `json:"cancelledBy,omitempty" bson:"cancelledBy,omitempty"` // patient, provider, system
	CancellationReason string `json:"cancellationReason,omitempty" bson:"cancellationReason,omitempty"`

	HasReview bool           `json:"hasReview" bson:"hasReview"`
	Review    *BookingReview `json:"review,omitempty" bson:"review,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
