package cart

// ProductType groups items for shipping-eligibility and box-lot rules.
type ProductType string

const (
	TypeSingle ProductType = "SINGLE"
	TypeBox    ProductType = "BOX"
	TypeOther  ProductType = "OTHER"
)

const (
	// Free shipping kicks in once the SINGLE+BOX subtotal reaches this.
	FreeShippingThresholdCents = 50000
	// Flat fee charged below the threshold.
	ShippingFeeCents = 4500
	// Sealed boxes are sold only in lots of at least this many units.
	MinBoxLot = 5
)

// Item is one cart line. Name, Image and PriceCents are snapshots taken when
// the item was first added; a later catalog price change does not touch lines
// already in the cart. Stock is the purchase ceiling supplied at add time.
type Item struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Image      string      `json:"image"`
	PriceCents int         `json:"price_cents"`
	Quantity   int         `json:"quantity"`
	Stock      int         `json:"stock"`
	Type       ProductType `json:"product_type"`
}

// ShippingInfo is the derived shipping block for a cart. Only the SINGLE+BOX
// partition counts toward the free-shipping threshold; a cart holding nothing
// but OTHER items therefore ships free (kept as-is pending product review).
type ShippingInfo struct {
	ShippingCents       int  `json:"shipping_cents"`
	IsFreeShipping      bool `json:"is_free_shipping"`
	SingleBoxTotalCents int  `json:"single_box_total_cents"`
	OtherTotalCents     int  `json:"other_total_cents"`
}
