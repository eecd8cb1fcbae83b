package events

import (
	"encoding/json"
	"time"
)

const (
	EventUserRegistered = "UserRegistered"
	EventProductRating  = "ProductRating"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// UserEvent announces a provisioned user account; the order service reacts
// by creating the user's basket.
type UserEvent struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ProductRatingEvent carries a single order-line rating to the catalog
// service, which folds it into the product's aggregate rating.
type ProductRatingEvent struct {
	ProductID int64 `json:"product_id"`
	Rating    int   `json:"rating"`
}
