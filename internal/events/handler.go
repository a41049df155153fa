package events

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"task-manager-backend/internal/apperr"
	"task-manager-backend/internal/auth"
	"task-manager-backend/internal/response"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is enforced by the router.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades the request and subscribes the connection to the events
// of the request's credential.
func Handler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cred, ok := auth.CredentialFromContext(r.Context())
		if !ok {
			response.WriteError(w, http.StatusUnauthorized, apperr.Unauthorized(nil))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[WARN] events: upgrade: %v", err)
			return
		}

		c := NewClient(hub, conn, cred)
		hub.Register(c)
		go c.WritePump()
		go c.ReadPump()
	}
}
