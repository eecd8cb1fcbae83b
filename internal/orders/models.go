package orders

import "time"

// Order is created once per successful checkout attempt and never deleted.
// Identity and lines are immutable; only status and payment reference may
// change, and only through the status machine.
type Order struct {
	ID         int64
	UserID     int64
	Status     Status
	TotalPrice int
	Items      []*Item
	PaymentID  *string
	Address    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Item is a historical snapshot of a basket line taken at order-creation
// time, decoupled from later basket and catalog mutation.
type Item struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Price     int
	Count     int
	Rating    *int
}
