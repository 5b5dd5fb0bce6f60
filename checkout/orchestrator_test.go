package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medirent/booking"
	"medirent/errs"
	"medirent/models"
)

func fakeCreator(failures map[string]error) Creator {
	return func(_ context.Context, req booking.CreateRequest) (*models.Booking, error) {
		if err, ok := failures[req.EquipmentID]; ok {
			return nil, err
		}
		return &models.Booking{
			BookingID:     "BKG-" + req.EquipmentID,
			EquipmentID:   req.EquipmentID,
			Quantity:      req.Quantity,
			Status:        models.BookingPending,
			PaymentStatus: models.PaymentPending,
		}, nil
	}
}

func fakeInventory(inventory map[string]*models.Equipment, errIDs map[string]bool) func(context.Context, string) (*models.Equipment, error) {
	return func(_ context.Context, itemID string) (*models.Equipment, error) {
		if errIDs[itemID] {
			return nil, errors.New("read timeout")
		}
		eq, ok := inventory[itemID]
		if !ok {
			return nil, errors.New("not found")
		}
		return eq, nil
	}
}

func lines(ids ...string) []models.CartItem {
	var out []models.CartItem
	for _, id := range ids {
		out = append(out, models.CartItem{ItemID: id, ItemName: id, Quantity: 1, Selected: true})
	}
	return out
}

func TestRunAllSucceeded(t *testing.T) {
	o := NewOrchestrator(fakeCreator(nil), fakeInventory(nil, nil))

	res := o.Run(context.Background(), lines("a", "b"), booking.CreateRequest{PatientID: "u1"})
	assert.Equal(t, AllSucceeded, res.Outcome)
	assert.Len(t, res.Bookings, 2)
	assert.ElementsMatch(t, []string{"BKG-a", "BKG-b"}, res.BookingIDs)
	assert.Empty(t, res.Failed)
	assert.NoError(t, res.FirstError)
}

func TestRunPartialFailureKeepsSucceededBookings(t *testing.T) {
	o := NewOrchestrator(fakeCreator(map[string]error{
		"b": errs.OutOfStock("b", 0, 1),
	}), fakeInventory(nil, nil))

	res := o.Run(context.Background(), lines("a", "b", "c"), booking.CreateRequest{PatientID: "u1"})
	assert.Equal(t, PartialFailure, res.Outcome)
	assert.ElementsMatch(t, []string{"BKG-a", "BKG-c"}, res.BookingIDs)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "b", res.Failed[0].ItemID)

	var typed *errs.Error
	require.ErrorAs(t, res.FirstError, &typed)
	assert.Equal(t, errs.CodeOutOfStock, typed.Code)
}

func TestRunAllFailed(t *testing.T) {
	boom := errs.OutOfStock("x", 0, 1)
	o := NewOrchestrator(fakeCreator(map[string]error{"a": boom, "b": boom}), fakeInventory(nil, nil))

	res := o.Run(context.Background(), lines("a", "b"), booking.CreateRequest{PatientID: "u1"})
	assert.Equal(t, AllFailed, res.Outcome)
	assert.Empty(t, res.BookingIDs)
	assert.Len(t, res.Failed, 2)
}

func TestPreCheckFlagsShortages(t *testing.T) {
	o := NewOrchestrator(fakeCreator(nil), fakeInventory(map[string]*models.Equipment{
		"bed":    {EquipmentID: "bed", EquipmentName: "Hospital Bed", Stock: 0},
		"walker": {EquipmentID: "walker", EquipmentName: "Walker", Stock: 5},
	}, nil))

	items := []models.CartItem{
		{ItemID: "bed", Quantity: 1},
		{ItemID: "walker", Quantity: 2},
	}
	conflicts := o.PreCheck(context.Background(), items)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "bed", conflicts[0].ItemID)
}

func TestPreCheckPassesLinesOnFetchFailure(t *testing.T) {
	// a transient read error must not block checkout; creation enforces stock
	o := NewOrchestrator(fakeCreator(nil), fakeInventory(nil, map[string]bool{"bed": true}))

	conflicts := o.PreCheck(context.Background(), []models.CartItem{{ItemID: "bed", Quantity: 2}})
	assert.Empty(t, conflicts)
}
