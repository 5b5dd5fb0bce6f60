package models

import "time"

// Transaction is the durable record of one payment attempt. A booking's
// paymentStatus is the projection of its latest successful transaction.
type Transaction struct {
	TransactionID string   `json:"transactionId" bson:"transactionId"`
	ReferenceType string   `json:"referenceType" bson:"referenceType"` // booking, listing_fee
	ReferenceIDs  []string `json:"referenceIds" bson:"referenceIds"`
	UserID        string   `json:"userId" bson:"userId"`
	Amount        float64  `json:"amount" bson:"amount"`
	PaymentMethod string   `json:"paymentMethod" bson:"paymentMethod"`
	Status        string   `json:"status" bson:"status"` // completed, failed
	Notes         string   `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
}

// IdempotencyRecord guards replayed payment submissions.
type IdempotencyRecord struct {
	Key         string                 `bson:"key"`
	Method      string                 `bson:"method"`
	Path        string                 `bson:"path"`
	UserID      string                 `bson:"user_id"`
	RequestHash string                 `bson:"request_hash"`
	Response    map[string]interface{} `bson:"response,omitempty"`
	CreatedAt   time.Time              `bson:"created_at"`
	ExpiresAt   time.Time              `bson:"expires_at"`
}
