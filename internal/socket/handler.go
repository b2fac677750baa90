package socket

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/fediBlack/we-budget/internal/auth"
	"github.com/fediBlack/we-budget/internal/config"
	"github.com/fediBlack/we-budget/internal/fanout"
	"github.com/fediBlack/we-budget/internal/presence"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict origin in prod
	},
}

// WSHandler upgrades /ws requests. The principal comes from a verified
// bearer token; a handshake without one never reaches the Gateway.
func WSHandler(hub *Hub, gateway *fanout.Gateway, cfg config.Config, writer *presence.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		claims, err := auth.ValidateToken(token, []byte(cfg.JWTSecret))
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		connID := uuid.NewString()
		principal := fanout.Principal(claims.UserID)

		client := NewClient(hub, gateway, conn, cfg, connID, principal, writer)
		hub.Add(client)

		if err := gateway.Connect(connID, principal); err != nil {
			log.Printf("socket: connect %s for user %d failed: %v", connID, claims.UserID, err)
			hub.Remove(connID)
			_ = conn.Close()
			return
		}

		writer.Enqueue(presence.Sample{
			UserID: claims.UserID,
			Status: presence.StatusOnline,
			TS:     time.Now().Unix(),
		})

		go client.WritePump()
		go client.ReadPump()
	}
}

func bearerToken(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	h := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(h, "Bearer "); ok {
		return after
	}
	return ""
}
