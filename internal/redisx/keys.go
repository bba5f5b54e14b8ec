package redisx

import "time"

const (
	// Durable client cart state: cart-storage:{session_id} -> cart snapshot JSON
	KeyCart = "cart-storage:%s"

	// Durable client wishlist state: wishlist-storage:{session_id} -> wishlist snapshot JSON
	KeyWishlist = "wishlist-storage:%s"

	// Cache order status: order_status:{order_number} -> {"status": "...", "payment_status": "..."}
	KeyOrderStatus = "order_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLSession     = 30 * 24 * time.Hour
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
