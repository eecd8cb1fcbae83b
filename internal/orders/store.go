package orders

import "context"

// Store persists orders. Status writes are single statements so an order
// is never durably PAID without its payment reference.
type Store interface {
	CreateWithItems(ctx context.Context, o *Order) error
	MarkPaid(ctx context.Context, orderID int64, paymentID string) error
	MarkCancelled(ctx context.Context, orderID int64) error
	FindByID(ctx context.Context, orderID int64) (*Order, error)
	// FindItem returns the line and the user id owning its order.
	FindItem(ctx context.Context, itemID int64) (*Item, int64, error)
	SetItemRating(ctx context.Context, itemID int64, rating int) error
}
