package socket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fediBlack/we-budget/internal/config"
	"github.com/fediBlack/we-budget/internal/fanout"
	"github.com/fediBlack/we-budget/internal/presence"
)

// Client is one live websocket session belonging to a principal.
type Client struct {
	hub     *Hub
	gateway *fanout.Gateway
	conn    *websocket.Conn
	send    chan []byte
	cfg     config.Config

	connID    string
	principal fanout.Principal

	presence *presence.Writer

	closeOnce sync.Once
}

func NewClient(hub *Hub, gateway *fanout.Gateway, conn *websocket.Conn, cfg config.Config, connID string, principal fanout.Principal, writer *presence.Writer) *Client {
	return &Client{
		hub:       hub,
		gateway:   gateway,
		conn:      conn,
		send:      make(chan []byte, cfg.SendBuffer),
		cfg:       cfg,
		connID:    connID,
		principal: principal,
		presence:  writer,
	}
}

// teardown runs at most once no matter which path gets there first:
// read error, write error, or slow-client eviction. Disconnect is a
// liveness event only; room memberships stay in the Index for the next
// connection of this principal.
func (c *Client) teardown() {
	c.closeOnce.Do(func() {
		c.gateway.Disconnect(c.connID)
		c.hub.Remove(c.connID)
		if c.conn != nil {
			_ = c.conn.Close()
		}
		if c.presence != nil {
			c.presence.Enqueue(presence.Sample{
				UserID: int64(c.principal),
				Status: presence.StatusOffline,
				TS:     time.Now().Unix(),
			})
		}
	})
}

func (c *Client) ReadPump() {
	defer c.teardown()

	c.conn.SetReadLimit(int64(c.cfg.MaxMessageBytes))
	_ = c.conn.SetReadDeadline(time.Now().Add(time.Duration(c.cfg.PongWaitMS) * time.Millisecond))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(time.Duration(c.cfg.PongWaitMS) * time.Millisecond))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.hub.metrics.MessagesIn.Add(1)

		msg, err := ParseClientMessage(data)
		if err != nil {
			_ = c.hub.Send(c.connID, ErrorFrame("malformed message"))
			continue
		}

		switch msg.Type {
		case MsgJoinRoom:
			topic := fanout.RoomTopic(msg.RoomID).String()
			if err := c.gateway.Join(c.connID, topic); err != nil {
				_ = c.hub.Send(c.connID, ErrorFrame(err.Error()))
				continue
			}
			c.hub.metrics.JoinRequests.Add(1)

		case MsgLeaveRoom:
			topic := fanout.RoomTopic(msg.RoomID).String()
			if err := c.gateway.Leave(c.connID, topic); err != nil {
				_ = c.hub.Send(c.connID, ErrorFrame(err.Error()))
				continue
			}
			c.hub.metrics.LeaveRequests.Add(1)

		case MsgPing:
			_ = c.hub.Send(c.connID, PongFrame())
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(time.Duration(c.cfg.PingPeriodMS) * time.Millisecond)
	defer func() {
		ticker.Stop()
		c.teardown()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(time.Duration(c.cfg.WriteWaitMS) * time.Millisecond))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			_, _ = w.Write(msg)

			n := len(c.send)
			for i := 0; i < n; i++ {
				_, _ = w.Write([]byte{'\n'})
				_, _ = w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

			c.hub.metrics.MessagesOut.Add(1)

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(time.Duration(c.cfg.WriteWaitMS) * time.Millisecond))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
