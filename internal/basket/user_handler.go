package basket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/gomarket/orders/internal/events"
	kafkax "github.com/gomarket/orders/internal/kafka"
	"github.com/gomarket/orders/internal/redisx"
)

// UserEventHandler provisions a basket when a user account appears.
// The transport does not guarantee exactly-once delivery; the unique
// constraint on user_id plus the event-id dedup make the handler safe
// to call again.
type UserEventHandler struct {
	Store       Store
	Redis       *redis.Client
	ServiceName string
}

func (h *UserEventHandler) HandleUserEvent(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != events.EventUserRegistered {
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, h.ServiceName, env.EventID)
	seen, _ := redisx.Exists(ctx, h.Redis, dkey)
	if seen {
		return nil
	}

	ev, err := kafkax.UnwrapPayload[events.UserEvent](env.Payload)
	if err != nil {
		return err
	}

	if err := h.Store.CreateForUser(ctx, ev.ID); err != nil {
		return err
	}
	_ = h.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	log.Printf("basket provisioned for user %d", ev.ID)
	return nil
}
