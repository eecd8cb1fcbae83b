package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/gomarket/orders/internal/events"
	kafkax "github.com/gomarket/orders/internal/kafka"
)

// RatingPublisher is the slice of the kafka producer the rating service
// needs.
type RatingPublisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// RatingService lets an order's owner rate a delivered line once. The
// rating is stored on the line and forwarded to the catalog service,
// which recomputes the product's aggregate rating asynchronously.
type RatingService struct {
	Orders      Store
	Producer    RatingPublisher
	ServiceName string
}

func (s *RatingService) SetRating(ctx context.Context, userID, itemID int64, rating int) (*Item, error) {
	item, ownerID, err := s.Orders.FindItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if ownerID != userID {
		return nil, ErrAccessDenied
	}
	if item.Rating != nil {
		return nil, ErrAlreadyRated
	}
	if rating < 0 || rating > 5 {
		return nil, ErrInvalidRating
	}

	if err := s.Orders.SetItemRating(ctx, itemID, rating); err != nil {
		return nil, err
	}
	item.Rating = &rating

	s.publishRating(item.ProductID, rating)
	return item, nil
}

func (s *RatingService) publishRating(productID int64, rating int) {
	env := events.Envelope{
		EventID:      uuid.NewString(),
		EventType:    events.EventProductRating,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     s.ServiceName,
		Payload: kafkax.MustMarshal(events.ProductRatingEvent{
			ProductID: productID,
			Rating:    rating,
		}),
	}
	s.Producer.Publish(events.ProductKey(productID), kafkax.MustMarshal(env),
		kafkago.Header{Key: "x-event-type", Value: []byte(events.EventProductRating)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
