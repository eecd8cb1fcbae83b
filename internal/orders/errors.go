package orders

import "errors"

var (
	ErrEmptyBasket       = errors.New("basket is empty")
	ErrIllegalTransition = errors.New("illegal order status transition")
	ErrPaymentFailed     = errors.New("payment failed")
	ErrAccessDenied      = errors.New("access denied")
	ErrOrderNotFound     = errors.New("order not found")
	ErrItemNotFound      = errors.New("order item not found")
	ErrAlreadyRated      = errors.New("order item already rated")
	ErrInvalidRating     = errors.New("rating out of range")
)
