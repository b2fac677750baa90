package socket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fediBlack/we-budget/internal/config"
	"github.com/fediBlack/we-budget/internal/fanout"
)

func newTestHub(t *testing.T) (*Hub, *fanout.Gateway, config.Config) {
	t.Helper()
	cfg := config.Config{SendBuffer: 4}
	hub := NewHub(cfg, NewMetrics())
	gateway := fanout.NewGateway(fanout.NewRegistry(), fanout.NewIndex(), hub)
	return hub, gateway, cfg
}

func addClient(t *testing.T, hub *Hub, gateway *fanout.Gateway, cfg config.Config, connID string, p fanout.Principal) *Client {
	t.Helper()
	c := NewClient(hub, gateway, nil, cfg, connID, p, nil)
	hub.Add(c)
	require.NoError(t, gateway.Connect(connID, p))
	return c
}

func TestHub_SendEnqueuesInOrder(t *testing.T) {
	hub, gateway, cfg := newTestHub(t)
	c := addClient(t, hub, gateway, cfg, "c1", 7)

	require.NoError(t, hub.Send("c1", []byte("one")))
	require.NoError(t, hub.Send("c1", []byte("two")))

	require.Equal(t, "one", string(<-c.send))
	require.Equal(t, "two", string(<-c.send))
}

func TestHub_SendUnknownConnection(t *testing.T) {
	hub, _, _ := newTestHub(t)
	require.Error(t, hub.Send("ghost", []byte("x")))
}

func TestHub_SlowClientIsTornDown(t *testing.T) {
	cfg := config.Config{SendBuffer: 1}
	hub := NewHub(cfg, NewMetrics())
	gateway := fanout.NewGateway(fanout.NewRegistry(), fanout.NewIndex(), hub)
	addClient(t, hub, gateway, cfg, "c1", 7)

	require.NoError(t, hub.Send("c1", []byte("fills the buffer")))
	require.Error(t, hub.Send("c1", []byte("overflows")))
	require.Equal(t, uint64(1), hub.metrics.DroppedSendMessages.Load())

	// the async teardown evicts the client from the table
	require.Eventually(t, func() bool {
		return hub.Send("c1", []byte("x")) != nil && hub.metrics.ConnectedClients.Load() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestHub_RemoveIsIdempotent(t *testing.T) {
	hub, gateway, cfg := newTestHub(t)
	addClient(t, hub, gateway, cfg, "c1", 7)

	hub.Remove("c1")
	hub.Remove("c1")

	require.Equal(t, int64(0), hub.metrics.ConnectedClients.Load())
	require.Equal(t, uint64(1), hub.metrics.TotalDisconnects.Load())
}

func TestPublishHandler_DeliversThroughHub(t *testing.T) {
	hub, gateway, cfg := newTestHub(t)
	c := addClient(t, hub, gateway, cfg, "c1", 7)
	require.NoError(t, gateway.Join("c1", "room:42"))

	handler := PublishHandler(gateway, cfg, hub.metrics)

	body := `{"topic":"room:42","payload":{"text":"hi"}}`
	req := httptest.NewRequest(http.MethodPost, "/publish", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp publishResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, 1, resp.Delivered)

	var evt fanout.Event
	require.NoError(t, json.Unmarshal(<-c.send, &evt))
	require.Equal(t, "room:42", evt.Topic)
	require.JSONEq(t, `{"text":"hi"}`, string(evt.Payload))
}

func TestPublishHandler_InvalidTopicIs400(t *testing.T) {
	hub, gateway, cfg := newTestHub(t)

	handler := PublishHandler(gateway, cfg, hub.metrics)

	req := httptest.NewRequest(http.MethodPost, "/publish",
		strings.NewReader(`{"topic":"not-a-topic","payload":{}}`))
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublishHandler_ServiceTokenEnforced(t *testing.T) {
	hub, gateway, cfg := newTestHub(t)
	cfg.ServiceToken = "s3cret"

	handler := PublishHandler(gateway, cfg, hub.metrics)

	req := httptest.NewRequest(http.MethodPost, "/publish",
		strings.NewReader(`{"topic":"room:1","payload":{}}`))
	rec := httptest.NewRecorder()
	handler(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/publish",
		strings.NewReader(`{"topic":"room:1","payload":{}}`))
	req.Header.Set("X-Service-Token", "s3cret")
	rec = httptest.NewRecorder()
	handler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPublishHandler_RejectsGet(t *testing.T) {
	hub, gateway, cfg := newTestHub(t)

	handler := PublishHandler(gateway, cfg, hub.metrics)

	req := httptest.NewRequest(http.MethodGet, "/publish", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
