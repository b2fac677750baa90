package socket

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fediBlack/we-budget/internal/config"
	"github.com/fediBlack/we-budget/internal/fanout"
)

// publishRequest is what the chat and notification services POST after
// their own persistence has committed. The payload is passed through
// opaque.
type publishRequest struct {
	Topic   string          `json:"topic" validate:"required"`
	Payload json.RawMessage `json:"payload" validate:"required"`
}

type publishResponse struct {
	Delivered int `json:"delivered"`
}

// PublishHandler is the collaborator-facing publish API. A delivered
// count of zero is a success: nobody was online, and the caller is the
// system of record anyway.
func PublishHandler(gateway *fanout.Gateway, cfg config.Config, metrics *Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if cfg.ServiceToken != "" && r.Header.Get("X-Service-Token") != cfg.ServiceToken {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req publishRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "malformed body", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, "missing topic or payload", http.StatusBadRequest)
			return
		}

		delivered, err := gateway.Publish(req.Topic, req.Payload)
		if err != nil {
			if errors.Is(err, fanout.ErrInvalidTopic) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "publish failed", http.StatusInternalServerError)
			return
		}

		metrics.Publishes.Add(1)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(publishResponse{Delivered: delivered})
	}
}
