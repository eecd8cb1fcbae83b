package basket

import "context"

// Store is the persistence surface the reconciler and the saga see.
type Store interface {
	CreateForUser(ctx context.Context, userID int64) error
	FindByUserID(ctx context.Context, userID int64) (*Basket, error)
	AddItem(ctx context.Context, basketID int64, item *Item) (*Item, error)
	DeleteItem(ctx context.Context, itemID int64) error
	UpdateItemCount(ctx context.Context, itemID int64, count int) error
	UpdateItemPrice(ctx context.Context, itemID int64, price int) error
	UpdateTotalPrice(ctx context.Context, basketID int64, total int) error
}
