package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/gomarket/orders/internal/events"
	kafkax "github.com/gomarket/orders/internal/kafka"
	"github.com/gomarket/orders/internal/redisx"
)

// RatingApplier is what the consumer needs from the ledger.
type RatingApplier interface {
	ApplyRating(ctx context.Context, productID int64, rating int) error
}

// RatingHandler consumes product-rating events published by the order
// service and folds them into the aggregate product rating.
type RatingHandler struct {
	Repo        RatingApplier
	Redis       *redis.Client
	ServiceName string
}

func (h *RatingHandler) HandleProductRating(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != events.EventProductRating {
		return nil
	}

	// dedup by event id; the transport may redeliver
	dkey := fmt.Sprintf(redisx.KeyDedup, h.ServiceName, env.EventID)
	seen, _ := redisx.Exists(ctx, h.Redis, dkey)
	if seen {
		return nil
	}

	ev, err := kafkax.UnwrapPayload[events.ProductRatingEvent](env.Payload)
	if err != nil {
		return err
	}

	if err := h.Repo.ApplyRating(ctx, ev.ProductID, ev.Rating); err != nil {
		return err
	}
	_ = h.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
	return nil
}
