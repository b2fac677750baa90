package socket

import (
	"fmt"
	"sync"

	"github.com/fediBlack/we-budget/internal/config"
	"github.com/fediBlack/we-budget/internal/fanout"
)

// Hub is the transport-side connection table: connection id → live
// client. It implements fanout.Sender. The Gateway's Registry decides
// who an event goes to; the Hub only knows how to reach a socket.
type Hub struct {
	cfg     config.Config
	metrics *Metrics

	mu      sync.RWMutex
	clients map[string]*Client
}

var _ fanout.Sender = (*Hub)(nil)

func NewHub(cfg config.Config, metrics *Metrics) *Hub {
	return &Hub{
		cfg:     cfg,
		metrics: metrics,
		clients: make(map[string]*Client),
	}
}

func (h *Hub) Add(c *Client) {
	h.mu.Lock()
	h.clients[c.connID] = c
	h.mu.Unlock()

	h.metrics.ConnectedClients.Add(1)
	h.metrics.TotalConnections.Add(1)
}

// Remove detaches and closes the client's send channel. Idempotent:
// both pumps and the slow-client path may race to tear down.
func (h *Hub) Remove(connID string) {
	h.mu.Lock()
	c, ok := h.clients[connID]
	if ok {
		delete(h.clients, connID)
		close(c.send)
	}
	h.mu.Unlock()

	if ok {
		h.metrics.ConnectedClients.Add(-1)
		h.metrics.TotalDisconnects.Add(1)
	}
}

// Send enqueues a payload onto the connection's FIFO buffer without
// blocking. The lock is held across the enqueue so Remove can never
// close the channel under an in-flight send. A full buffer means the
// client is too slow to keep: it is torn down and the error lets the
// Gateway record the implicit disconnect.
func (h *Hub) Send(connID string, payload []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[connID]
	if !ok {
		return fmt.Errorf("no live client for connection %s", connID)
	}

	select {
	case c.send <- payload:
		h.metrics.EventsDelivered.Add(1)
		return nil
	default:
		h.metrics.DroppedSendMessages.Add(1)
		go c.teardown()
		return fmt.Errorf("send buffer full for connection %s", connID)
	}
}
