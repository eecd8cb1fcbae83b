package redisx

import "time"

const (
	// Cache order status: order_status:{user_id}:{order_id} -> {"status": "..."}
	// Keyed by owner as well as order, so a hit never serves another
	// user's order.
	KeyOrderStatus = "order_status:%d:%d"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
