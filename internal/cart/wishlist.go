package cart

// WishlistItem is an Item without a quantity.
type WishlistItem struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Image      string      `json:"image"`
	PriceCents int         `json:"price_cents"`
	Stock      int         `json:"stock"`
	Type       ProductType `json:"product_type"`
}

// Wishlist is a set of items keyed by ID, insertion-ordered.
type Wishlist struct {
	items []WishlistItem
}

func NewWishlist() *Wishlist { return &Wishlist{} }

// AddItem is a no-op when the ID is already present.
func (w *Wishlist) AddItem(it WishlistItem) {
	if w.Contains(it.ID) {
		return
	}
	w.items = append(w.items, it)
}

func (w *Wishlist) RemoveItem(id string) {
	for i, it := range w.items {
		if it.ID == id {
			w.items = append(w.items[:i], w.items[i+1:]...)
			return
		}
	}
}

func (w *Wishlist) Contains(id string) bool {
	for _, it := range w.items {
		if it.ID == id {
			return true
		}
	}
	return false
}

func (w *Wishlist) Clear() { w.items = nil }

// TotalItems is the set cardinality.
func (w *Wishlist) TotalItems() int { return len(w.items) }

func (w *Wishlist) Items() []WishlistItem {
	out := make([]WishlistItem, len(w.items))
	copy(out, w.items)
	return out
}
