// Package mq publishes domain events over Redis pub/sub so interested
// workers (websocket broadcast, future indexing) can react out of band.
package mq

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"medirent/rdx"
)

const Channel = "booking-events"

// Event is the envelope every published message uses.
type Event struct {
	Name       string      `json:"name"`
	BookingID  string      `json:"bookingId,omitempty"`
	PatientID  string      `json:"patientId,omitempty"`
	ProviderID string      `json:"providerId,omitempty"`
	Payload    interface{} `json:"payload,omitempty"`
	At         time.Time   `json:"at"`
}

// Emit publishes the event; failures are logged, never propagated, so a
// Redis hiccup cannot fail the request that produced the event.
func Emit(ctx context.Context, ev Event) {
	ev.At = time.Now()
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[Emit] marshal failed for %s: %v", ev.Name, err)
		return
	}
	if err := rdx.Conn.Publish(ctx, Channel, data).Err(); err != nil {
		log.Printf("[Emit] publish failed for %s: %v", ev.Name, err)
	}
}

// Subscribe hands each event on the channel to handle, until the process
// exits. Malformed payloads are skipped.
func Subscribe(handle func(Event)) {
	ctx := context.Background()
	sub := rdx.Conn.Subscribe(ctx, Channel)
	ch := sub.Channel()

	log.Println("[mq] listening on", Channel)
	for msg := range ch {
		var ev Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			log.Printf("[mq] bad event payload: %v", err)
			continue
		}
		handle(ev)
	}
}
