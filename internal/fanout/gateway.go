package fanout

import (
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// Sender pushes a marshaled event to one live connection. Send must not
// block: implementations enqueue onto the connection's FIFO buffer and
// let the connection's own write loop drain it, so a stuck socket never
// delays the rest of a fan-out. An error means the connection could not
// accept the event and should be treated as gone.
type Sender interface {
	Send(connectionID string, payload []byte) error
}

// Gateway is the only entry point for transports and domain
// collaborators. It owns the Registry and Index; nothing else mutates
// them.
type Gateway struct {
	registry *Registry
	index    *Index
	sender   Sender
}

func NewGateway(registry *Registry, index *Index, sender Sender) *Gateway {
	return &Gateway{
		registry: registry,
		index:    index,
		sender:   sender,
	}
}

// Connect registers a live connection. Room memberships the principal
// accumulated before (or during a previous connection) apply
// immediately; no re-join is needed after a reconnect.
func (g *Gateway) Connect(connID string, p Principal) error {
	return g.registry.Register(connID, p)
}

// Disconnect is a pure liveness event: it never touches membership.
func (g *Gateway) Disconnect(connID string) {
	g.registry.Unregister(connID)
}

// Join subscribes the connection's principal to a topic. Joining a user
// channel is accepted but stores nothing: that membership is structural.
func (g *Gateway) Join(connID, topic string) error {
	t, err := ParseTopic(topic)
	if err != nil {
		return err
	}

	p, ok := g.registry.PrincipalOf(connID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownConnection, connID)
	}

	if t.Kind == TopicUser {
		return nil
	}
	g.index.Join(t, p)
	return nil
}

func (g *Gateway) Leave(connID, topic string) error {
	t, err := ParseTopic(topic)
	if err != nil {
		return err
	}

	p, ok := g.registry.PrincipalOf(connID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownConnection, connID)
	}

	if t.Kind == TopicUser {
		return nil
	}
	g.index.Leave(t, p)
	return nil
}

// Publish delivers a payload to every live connection of every member
// principal of the topic. The member and connection sets are a
// point-in-time snapshot taken at the start of the call; joins and
// connects racing with an in-flight publish may or may not be included.
//
// Returns the number of connections the event was handed to. Zero is a
// valid result, not an error — the caller has already durably stored
// the underlying data before publishing. A per-connection send failure
// is logged, converted to an implicit disconnect, and never aborts
// delivery to the remaining recipients.
func (g *Gateway) Publish(topic string, payload json.RawMessage) (int, error) {
	t, err := ParseTopic(topic)
	if err != nil {
		return 0, err
	}

	var members []Principal
	if t.Kind == TopicUser {
		members = []Principal{Principal(t.ID)}
	} else {
		members = g.index.MembersOf(t)
	}
	if len(members) == 0 {
		return 0, nil
	}

	data, err := json.Marshal(Event{
		Topic:       t.String(),
		Payload:     payload,
		PublishedAt: time.Now().UnixMilli(),
	})
	if err != nil {
		return 0, fmt.Errorf("marshal event for %s: %w", t, err)
	}

	reached := 0
	for _, p := range members {
		for _, connID := range g.registry.ConnectionsFor(p) {
			if err := g.sender.Send(connID, data); err != nil {
				log.Printf("fanout: send to %s failed: %v (dropping connection)", connID, err)
				g.Disconnect(connID)
				continue
			}
			reached++
		}
	}
	return reached, nil
}

// TopicsOf exposes a principal's explicit room memberships, mainly for
// introspection endpoints and tests.
func (g *Gateway) TopicsOf(p Principal) []Topic {
	return g.index.TopicsOf(p)
}
