package fanout

import "encoding/json"

// Event is the envelope pushed to every recipient connection. The
// payload is the collaborator's already-serialized domain object; this
// layer never looks inside it.
type Event struct {
	Topic       string          `json:"topic"`
	Payload     json.RawMessage `json:"payload"`
	PublishedAt int64           `json:"publishedAt"`
}
