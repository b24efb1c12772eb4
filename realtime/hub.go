package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Event types pushed to connected dashboards.
const (
	EventNotification   = "notification"
	EventEodSubmitted   = "eod_submitted"
	EventEodDecided     = "eod_decided"
	EventRequestDecided = "request_decided"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub holds every connected dashboard client (branch admins, cashiers) keyed
// by role so future filtering can happen per role.
type Hub struct {
	clients map[*websocket.Conn]string
	mutex   sync.Mutex
}

var hub = Hub{
	clients: make(map[*websocket.Conn]string),
}

// RegisterClient adds a connection with the actor's role.
func RegisterClient(conn *websocket.Conn, role string) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	hub.clients[conn] = role
}

// UnregisterClient drops and closes a connection.
func UnregisterClient(conn *websocket.Conn) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	delete(hub.clients, conn)
	conn.Close()
}

// BroadcastNotification pushes a stored notification to all clients.
func BroadcastNotification(data interface{}) {
	broadcast(Message{Event: EventNotification, Data: data})
}

// BroadcastEodSubmitted announces a summary waiting for review.
func BroadcastEodSubmitted(data interface{}) {
	broadcast(Message{Event: EventEodSubmitted, Data: data})
}

// BroadcastEodDecided announces an approve/reject/flag/reset outcome.
func BroadcastEodDecided(data interface{}) {
	broadcast(Message{Event: EventEodDecided, Data: data})
}

// BroadcastRequestDecided announces a schedule-request decision.
func BroadcastRequestDecided(data interface{}) {
	broadcast(Message{Event: EventRequestDecided, Data: data})
}

func broadcast(msg Message) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling hub message: %v", err)
		return
	}

	for conn := range hub.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Error sending hub message to client: %v", err)
			continue
		}
	}
}
