// Package checkout turns selected cart lines into bookings. Creation is
// fanned out per line and joined; the result is tagged so callers can see
// exactly which lines booked and which did not.
package checkout

import (
	"context"
	"log"
	"sync"

	"medirent/booking"
	"medirent/errs"
	"medirent/models"
	"medirent/stock"
)

// Creator makes one booking. Injected so the fan-out is testable without Mongo.
type Creator func(ctx context.Context, req booking.CreateRequest) (*models.Booking, error)

const (
	AllSucceeded   = "allSucceeded"
	PartialFailure = "partialFailure"
	AllFailed      = "allFailed"
)

// FailedLine names one cart line that could not be booked.
type FailedLine struct {
	ItemID   string `json:"itemId"`
	ItemName string `json:"itemName"`
	Message  string `json:"message"`
}

// BatchResult is the joined outcome of one checkout fan-out. Never a bare
// bool: partial failures carry both the bookings that exist and the lines
// that still need attention.
type BatchResult struct {
	Outcome    string            `json:"outcome"`
	Bookings   []*models.Booking `json:"bookings"`
	BookingIDs []string          `json:"bookingIds"`
	Failed     []FailedLine      `json:"failed,omitempty"`
	FirstError error             `json:"-"`
}

type Orchestrator struct {
	create Creator
	fetch  stock.FetchFunc
}

func NewOrchestrator(create Creator, fetch stock.FetchFunc) *Orchestrator {
	return &Orchestrator{create: create, fetch: fetch}
}

// PreCheck validates stock for every line before any booking is attempted.
// A fetch failure passes the line through: the conditional decrement inside
// creation is the enforcement point, and blocking a checkout on a transient
// read error would be the wrong failure mode here (the cart add path takes
// the opposite stance).
func (o *Orchestrator) PreCheck(ctx context.Context, lines []models.CartItem) []FailedLine {
	var conflicts []FailedLine
	for _, line := range lines {
		eq, err := o.fetch(ctx, line.ItemID)
		if err != nil {
			log.Println("checkout stock pre-check skipped for", line.ItemID, ":", err)
			continue
		}
		if eq.Stock < line.Quantity {
			conflicts = append(conflicts, FailedLine{
				ItemID:   line.ItemID,
				ItemName: eq.EquipmentName,
				Message:  errs.InsufficientStock(eq.EquipmentName, eq.Stock, line.Quantity).Message,
			})
		}
	}
	return conflicts
}

// Run creates one booking per line concurrently and joins the results.
// Succeeded bookings are kept even when siblings fail.
func (o *Orchestrator) Run(ctx context.Context, lines []models.CartItem, shared booking.CreateRequest) BatchResult {
	type lineResult struct {
		booking *models.Booking
		failed  *FailedLine
		err     error
	}
	results := make([]lineResult, len(lines))

	var wg sync.WaitGroup
	for i, line := range lines {
		wg.Add(1)
		go func(i int, line models.CartItem) {
			defer wg.Done()
			req := shared
			req.EquipmentID = line.ItemID
			req.EquipmentName = line.ItemName
			req.Quantity = line.Quantity
			req.PricePerDay = line.PricePerDay
			req.ProviderID = line.ProviderID
			req.ProviderName = line.ProviderName

			b, err := o.create(ctx, req)
			if err != nil {
				msg := "Booking creation failed"
				if e, ok := err.(*errs.Error); ok {
					msg = e.Message
				}
				results[i] = lineResult{failed: &FailedLine{ItemID: line.ItemID, ItemName: line.ItemName, Message: msg}, err: err}
				return
			}
			results[i] = lineResult{booking: b}
		}(i, line)
	}
	wg.Wait()

	out := BatchResult{}
	for _, res := range results {
		if res.booking != nil {
			out.Bookings = append(out.Bookings, res.booking)
			out.BookingIDs = append(out.BookingIDs, res.booking.BookingID)
			continue
		}
		out.Failed = append(out.Failed, *res.failed)
		if out.FirstError == nil {
			out.FirstError = res.err
		}
	}

	switch {
	case len(out.Failed) == 0:
		out.Outcome = AllSucceeded
	case len(out.Bookings) == 0:
		out.Outcome = AllFailed
	default:
		out.Outcome = PartialFailure
	}
	return out
}
