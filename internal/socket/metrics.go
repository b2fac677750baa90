package socket

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/fediBlack/we-budget/internal/presence"
)

type Metrics struct {
	ConnectedClients atomic.Int64

	TotalConnections atomic.Uint64
	TotalDisconnects atomic.Uint64

	MessagesIn  atomic.Uint64
	MessagesOut atomic.Uint64

	JoinRequests  atomic.Uint64
	LeaveRequests atomic.Uint64

	Publishes           atomic.Uint64
	EventsDelivered     atomic.Uint64
	DroppedSendMessages atomic.Uint64

	StartTime time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{StartTime: time.Now()}
}

type metricsSnapshot struct {
	UptimeSeconds float64 `json:"uptimeSeconds"`

	ConnectedClients int64 `json:"connectedClients"`

	TotalConnections uint64 `json:"totalConnections"`
	TotalDisconnects uint64 `json:"totalDisconnects"`

	MessagesIn  uint64 `json:"messagesIn"`
	MessagesOut uint64 `json:"messagesOut"`

	JoinRequests  uint64 `json:"joinRequests"`
	LeaveRequests uint64 `json:"leaveRequests"`

	Publishes           uint64 `json:"publishes"`
	EventsDelivered     uint64 `json:"eventsDelivered"`
	DroppedSendMessages uint64 `json:"droppedSendMessages"`

	PresenceEnqueued uint64 `json:"presenceEnqueued"`
	PresenceDropped  uint64 `json:"presenceDropped"`
	PresenceWritten  uint64 `json:"presenceWritten"`
	PresenceErrors   uint64 `json:"presenceErrors"`
}

func (m *Metrics) Snapshot() metricsSnapshot {
	uptime := time.Since(m.StartTime).Seconds()
	return metricsSnapshot{
		UptimeSeconds: uptime,

		ConnectedClients: m.ConnectedClients.Load(),

		TotalConnections: m.TotalConnections.Load(),
		TotalDisconnects: m.TotalDisconnects.Load(),

		MessagesIn:  m.MessagesIn.Load(),
		MessagesOut: m.MessagesOut.Load(),

		JoinRequests:  m.JoinRequests.Load(),
		LeaveRequests: m.LeaveRequests.Load(),

		Publishes:           m.Publishes.Load(),
		EventsDelivered:     m.EventsDelivered.Load(),
		DroppedSendMessages: m.DroppedSendMessages.Load(),
	}
}

func MetricsHandler(m *Metrics, writer *presence.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := m.Snapshot()
		if writer != nil {
			snap.PresenceEnqueued, snap.PresenceDropped, snap.PresenceWritten, snap.PresenceErrors = writer.Stats()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(snap)
	}
}
