package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"medirent/models"
	"medirent/mq"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins — adjust for production if needed
		return true
	},
}

var (
	subscribers = make(map[string][]*websocket.Conn)
	mu          sync.Mutex
)

// HandleWS subscribes a client to live booking updates for one party:
// /ws/bookings/:role/:id with role "patient" or "provider".
func HandleWS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	role := ps.ByName("role")
	id := ps.ByName("id")
	if role != "patient" && role != "provider" {
		http.Error(w, "Unknown subscriber role", http.StatusBadRequest)
		return
	}
	key := role + "_" + id

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "WebSocket upgrade failed", http.StatusBadRequest)
		return
	}

	mu.Lock()
	subscribers[key] = append(subscribers[key], conn)
	mu.Unlock()

	for {
		// This keeps the connection alive until the client disconnects
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	// Clean up on disconnect
	mu.Lock()
	conns := subscribers[key]
	newList := make([]*websocket.Conn, 0, len(conns))
	for _, c := range conns {
		if c != conn {
			newList = append(newList, c)
		}
	}
	subscribers[key] = newList
	mu.Unlock()

	conn.Close()
}

func broadcast(key string, val []byte) {
	mu.Lock()
	defer mu.Unlock()

	conns := subscribers[key]
	newList := conns[:0]

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, val); err == nil {
			newList = append(newList, conn)
		} else {
			conn.Close()
		}
	}

	subscribers[key] = newList
}

// EmitEvent publishes a booking event; the worker fans it out to both
// parties' websocket subscribers.
func EmitEvent(ctx context.Context, name string, b *models.Booking) {
	mq.Emit(ctx, mq.Event{
		Name:       name,
		BookingID:  b.BookingID,
		PatientID:  b.PatientID,
		ProviderID: b.ProviderID,
		Payload:    b,
	})
}

// StartEventWorker bridges the Redis channel to websocket subscribers.
// Run once from main.
func StartEventWorker() {
	mq.Subscribe(func(ev mq.Event) {
		data, err := json.Marshal(ev)
		if err != nil {
			return
		}
		if ev.PatientID != "" {
			broadcast("patient_"+ev.PatientID, data)
		}
		if ev.ProviderID != "" {
			broadcast("provider_"+ev.ProviderID, data)
		}
	})
}
