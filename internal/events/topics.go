package events

import "strconv"

const (
	TopicUsers    = "users"
	TopicProducts = "products"
)

// Partition key = product_id, so rating events for one product stay ordered.
func ProductKey(productID int64) []byte {
	return []byte(strconv.FormatInt(productID, 10))
}

// Partition key = user_id for user lifecycle events.
func UserKey(userID int64) []byte {
	return []byte(strconv.FormatInt(userID, 10))
}
