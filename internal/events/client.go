package events

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"task-manager-backend/internal/auth"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096

	pongBuffer = 8
)

// Client is one websocket connection of an authenticated user. Only the hub
// sends on or closes send; pong is written by ReadPump and never closed.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	pong chan []byte
	cred auth.Credential
}

func NewClient(hub *Hub, conn *websocket.Conn, cred auth.Credential) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		pong: make(chan []byte, pongBuffer),
		cred: cred,
	}
}

type inbound struct {
	Type string `json:"type"`
}

// ReadPump answers application pings and keeps the read deadline alive. It
// returns when the connection fails.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WARN] events: read: %v", err)
			}
			return
		}

		var in inbound
		if err := json.Unmarshal(message, &in); err != nil || in.Type != "ping" {
			continue
		}
		pong, err := json.Marshal(Event{Type: "pong", Timestamp: time.Now().UTC()})
		if err != nil {
			continue
		}
		select {
		case c.pong <- pong:
		default:
		}
	}
}

// WritePump writes queued events and periodic pings to the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case message := <-c.pong:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
