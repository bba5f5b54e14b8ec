package orders

import (
	"time"

	"github.com/tcgshop/checkout-core/internal/cart"
)

type Product struct {
	ID         string
	SKU        string
	Name       string
	Image      string
	Stock      int
	PriceCents int
	Type       cart.ProductType
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Order struct {
	OrderNumber   string
	UserID        string
	Status        Status
	PaymentStatus PaymentStatus
	TotalCents    int
	ShippingCents int
	// Set while unconfirmed reservations hold inventory for this order;
	// cleared on payment confirmation or sweep cancellation.
	ReservationExpiresAt *time.Time
	Notes                string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type OrderItem struct {
	ID          string
	OrderNumber string
	ProductID   string
	Qty         int
	PriceCents  int
}

// StockReservation is a time-boxed hold against inventory. Confirmed
// reservations are permanent and never swept; unconfirmed ones become sweep
// candidates once ExpiresAt has passed. OrderNumber may be nil for holds that
// were detached before an order existed.
type StockReservation struct {
	ID          string
	OrderNumber *string
	ProductID   string
	Quantity    int
	ExpiresAt   time.Time
	Confirmed   bool
	CreatedAt   time.Time
}
