package cart

// Cart holds the shopper's selected items and derives pricing, shipping and
// fulfillment-validity facts on demand. All mutations clamp their inputs
// instead of failing: the UI layer may call any operation without
// guard-checking first, and no entry ever ends up outside [1, stock].
//
// Entries keep insertion order and there is at most one entry per item ID.
type Cart struct {
	items []Item
}

func New() *Cart { return &Cart{} }

// AddItem inserts it with the given quantity, or merges into the existing
// entry with the same ID. On merge, the stock ceiling already carried by the
// entry is authoritative; the incoming item's display fields and price are
// ignored so the original add-time snapshot survives. Over-requests clamp
// silently.
func (c *Cart) AddItem(it Item, qty int) {
	if qty < 1 {
		qty = 1
	}
	if i := c.index(it.ID); i >= 0 {
		c.items[i].Quantity = clampQty(c.items[i].Quantity+qty, c.items[i].Stock)
		return
	}
	if it.Stock < 1 {
		it.Stock = 1
	}
	it.Quantity = clampQty(qty, it.Stock)
	c.items = append(c.items, it)
}

// RemoveItem deletes the entry if present, no-op otherwise.
func (c *Cart) RemoveItem(id string) {
	if i := c.index(id); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

// UpdateQuantity sets the entry's quantity clamped to [0, stock]. A result of
// zero removes the entry entirely; this is the only quantity path that can
// delete (RemoveItem being the explicit one).
func (c *Cart) UpdateQuantity(id string, qty int) {
	i := c.index(id)
	if i < 0 {
		return
	}
	if qty <= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
		return
	}
	c.items[i].Quantity = clampQty(qty, c.items[i].Stock)
}

func (c *Cart) Clear() { c.items = nil }

// Items returns a copy of the entries in insertion order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Len() int { return len(c.items) }

// TotalItems is the sum of quantities across all entries.
func (c *Cart) TotalItems() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// TotalPriceCents is the sum of price*quantity across all entries.
func (c *Cart) TotalPriceCents() int {
	total := 0
	for _, it := range c.items {
		total += it.PriceCents * it.Quantity
	}
	return total
}

// CustomsFeeCents is fixed at zero for this deployment. Kept as a method so
// region-specific duty calculation has a single place to land.
func (c *Cart) CustomsFeeCents() int { return 0 }

// BoxCount is the aggregate quantity of BOX-type entries.
func (c *Cart) BoxCount() int {
	n := 0
	for _, it := range c.items {
		if it.Type == TypeBox {
			n += it.Quantity
		}
	}
	return n
}

// TotalPriceCentsByType sums price*quantity over entries of the given type.
func (c *Cart) TotalPriceCentsByType(t ProductType) int {
	total := 0
	for _, it := range c.items {
		if it.Type == t {
			total += it.PriceCents * it.Quantity
		}
	}
	return total
}

func (c *Cart) HasBoxItems() bool {
	for _, it := range c.items {
		if it.Type == TypeBox {
			return true
		}
	}
	return false
}

// IsBoxOrderValid reports whether the cart satisfies the box-lot rule: carts
// with no BOX units are always valid, otherwise the aggregate BOX quantity
// must reach MinBoxLot. Checkout must block submission while this is false.
func (c *Cart) IsBoxOrderValid() bool {
	n := c.BoxCount()
	return n == 0 || n >= MinBoxLot
}

// Shipping partitions the subtotals by product type and applies the
// free-shipping rule: free when the SINGLE+BOX subtotal reaches the threshold
// or is zero, else the flat fee.
func (c *Cart) Shipping() ShippingInfo {
	singleBox := c.TotalPriceCentsByType(TypeSingle) + c.TotalPriceCentsByType(TypeBox)
	other := c.TotalPriceCentsByType(TypeOther)

	free := singleBox >= FreeShippingThresholdCents || singleBox == 0
	fee := ShippingFeeCents
	if free {
		fee = 0
	}
	return ShippingInfo{
		ShippingCents:       fee,
		IsFreeShipping:      free,
		SingleBoxTotalCents: singleBox,
		OtherTotalCents:     other,
	}
}

func (c *Cart) index(id string) int {
	for i, it := range c.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func clampQty(q, stock int) int {
	if stock < 1 {
		stock = 1
	}
	if q < 1 {
		return 1
	}
	if q > stock {
		return stock
	}
	return q
}
