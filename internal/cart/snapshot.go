package cart

// Snapshot is the serialized form persisted to the session store.
type Snapshot struct {
	Items []Item `json:"items"`
}

func (c *Cart) Snapshot() Snapshot {
	return Snapshot{Items: c.Items()}
}

// Restore rebuilds a cart from a snapshot, re-clamping every entry so a
// tampered or stale snapshot can never resurrect an invalid quantity.
func Restore(s Snapshot) *Cart {
	c := New()
	for _, it := range s.Items {
		c.AddItem(it, it.Quantity)
	}
	return c
}

// WishlistSnapshot is the serialized wishlist form.
type WishlistSnapshot struct {
	Items []WishlistItem `json:"items"`
}

func (w *Wishlist) Snapshot() WishlistSnapshot {
	return WishlistSnapshot{Items: w.Items()}
}

func RestoreWishlist(s WishlistSnapshot) *Wishlist {
	w := NewWishlist()
	for _, it := range s.Items {
		w.AddItem(it)
	}
	return w
}
