// Package events pushes change notifications to websocket clients of the
// account/user that caused them.
package events

import (
	"context"
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"task-manager-backend/internal/auth"
)

const (
	TypeTaskCreated     = "task.created"
	TypeCategoryCreated = "category.created"
)

const (
	broadcastBuffer = 64
	sendBuffer      = 256
)

// Event is one notification. Only clients holding Credential receive it.
type Event struct {
	Type       string          `json:"type"`
	Data       any             `json:"data"`
	Timestamp  time.Time       `json:"timestamp"`
	Credential auth.Credential `json:"-"`
}

// Publisher accepts events from request handlers.
type Publisher interface {
	Publish(Event)
}

// Discard drops every event.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(Event) {}

// Hub maintains the set of active clients and fans events out to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	count      atomic.Int64
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Event, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.send)
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish queues ev for delivery. Events are dropped when the queue is full
// so a request never waits on slow websocket clients.
func (h *Hub) Publish(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	select {
	case h.broadcast <- ev:
	default:
		log.Printf("[WARN] events: queue full, dropping %s", ev.Type)
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// Run processes registrations and events until ctx is done, then disconnects
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for c := range h.clients {
			h.drop(c)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = true
			h.count.Add(1)
			log.Printf("[info] events: client connected account=%d user=%d", c.cred.IDAccount, c.cred.IDUser)
		case c := <-h.unregister:
			if h.clients[c] {
				h.drop(c)
				log.Printf("[info] events: client disconnected account=%d user=%d", c.cred.IDAccount, c.cred.IDUser)
			}
		case ev := <-h.broadcast:
			msg, err := json.Marshal(ev)
			if err != nil {
				log.Printf("[WARN] events: marshal %s: %v", ev.Type, err)
				continue
			}
			for c := range h.clients {
				if c.cred != ev.Credential {
					continue
				}
				select {
				case c.send <- msg:
				default:
					log.Printf("[WARN] events: send buffer full, removing client account=%d user=%d", c.cred.IDAccount, c.cred.IDUser)
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.count.Add(-1)
}
