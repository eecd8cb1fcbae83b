package basket

import "errors"

var ErrNotFound = errors.New("basket not found")

// Basket is owned by exactly one user and lives as long as the user does.
// Lines carry cached prices and counts; the catalog stays authoritative.
type Basket struct {
	ID         int64
	UserID     int64
	TotalPrice int
	Items      []*Item
}

type Item struct {
	ID                 int64
	BasketID           int64
	ProductID          int64
	ProductName        string
	ProductDescription string
	Price              int
	Count              int
	SellerName         string
}

// ComputeTotal sums price x count over the current lines.
func (b *Basket) ComputeTotal() int {
	total := 0
	for _, it := range b.Items {
		total += it.Price * it.Count
	}
	return total
}
