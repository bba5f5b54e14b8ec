package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated   = "OrderCreated"
	EventOrderCancelled = "OrderCancelled"
)

const ReasonReservationExpired = "RESERVATION_EXPIRED"

type Envelope struct {
	EventID       string          `json:"event_id"`   // uuid
	EventType     string          `json:"event_type"` // one of the consts above
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"` // RFC3339
	Producer      string          `json:"producer"`    // e.g. "storefront-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order number
	Payload       json.RawMessage `json:"payload"`
}

type LineItem struct {
	ProductID  string `json:"product_id"`
	Qty        int    `json:"qty"`
	PriceCents int    `json:"price_cents"`
}

type OrderCreatedPayload struct {
	OrderNumber   string     `json:"order_number"`
	UserID        string     `json:"user_id"`
	Items         []LineItem `json:"items"`
	TotalCents    int        `json:"total_cents"`
	ShippingCents int        `json:"shipping_cents"`
}

type OrderCancelledPayload struct {
	OrderNumber string `json:"order_number"`
	Reason      string `json:"reason"` // e.g. RESERVATION_EXPIRED
}
