package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func wish(id string) WishlistItem {
	return WishlistItem{ID: id, Name: "card " + id, PriceCents: 500, Stock: 10, Type: TypeSingle}
}

func TestWishlist_SetSemantics(t *testing.T) {
	w := NewWishlist()
	w.AddItem(wish("p1"))
	w.AddItem(wish("p2"))
	w.AddItem(wish("p1")) // duplicate, no-op

	assert.Equal(t, 2, w.TotalItems())
	assert.True(t, w.Contains("p1"))
	assert.True(t, w.Contains("p2"))
	assert.False(t, w.Contains("p3"))
}

func TestWishlist_RemoveAndClear(t *testing.T) {
	w := NewWishlist()
	w.AddItem(wish("p1"))
	w.AddItem(wish("p2"))

	w.RemoveItem("p1")
	assert.False(t, w.Contains("p1"))
	assert.Equal(t, 1, w.TotalItems())

	w.RemoveItem("ghost") // no-op
	assert.Equal(t, 1, w.TotalItems())

	w.Clear()
	assert.Equal(t, 0, w.TotalItems())
}

func TestWishlist_SnapshotRoundTrip(t *testing.T) {
	w := NewWishlist()
	w.AddItem(wish("p1"))
	w.AddItem(wish("p2"))

	restored := RestoreWishlist(w.Snapshot())
	assert.Equal(t, w.Items(), restored.Items())
}
