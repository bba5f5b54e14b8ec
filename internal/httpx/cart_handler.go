package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tcgshop/checkout-core/internal/cart"
	"github.com/tcgshop/checkout-core/internal/cartstore"
)

// CartHandler serves the session-scoped cart and wishlist. The session id
// comes from the X-Session-Id header; every mutation is written through to
// the durable store before the response is sent.
type CartHandler struct {
	Sessions *cartstore.Sessions
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Get("/cart", h.getCart)
	r.Post("/cart/items", h.addItem)
	r.Put("/cart/items/{id}", h.updateQuantity)
	r.Delete("/cart/items/{id}", h.removeItem)
	r.Delete("/cart", h.clearCart)

	r.Get("/wishlist", h.getWishlist)
	r.Post("/wishlist/items", h.addWishlistItem)
	r.Delete("/wishlist/items/{id}", h.removeWishlistItem)
	r.Delete("/wishlist", h.clearWishlist)
}

func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	sid := r.Header.Get("X-Session-Id")
	if sid == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing X-Session-Id"})
		return "", false
	}
	return sid, true
}

// CartView is the cart snapshot plus every derived fact the storefront UI
// renders: totals, the shipping block, and the box-lot gate.
type CartView struct {
	Items           []cart.Item       `json:"items"`
	TotalItems      int               `json:"total_items"`
	TotalCents      int               `json:"total_cents"`
	CustomsFeeCents int               `json:"customs_fee_cents"`
	BoxCount        int               `json:"box_count"`
	HasBoxItems     bool              `json:"has_box_items"`
	BoxOrderValid   bool              `json:"box_order_valid"`
	Shipping        cart.ShippingInfo `json:"shipping"`
}

func cartView(c *cart.Cart) CartView {
	return CartView{
		Items:           c.Items(),
		TotalItems:      c.TotalItems(),
		TotalCents:      c.TotalPriceCents(),
		CustomsFeeCents: c.CustomsFeeCents(),
		BoxCount:        c.BoxCount(),
		HasBoxItems:     c.HasBoxItems(),
		BoxOrderValid:   c.IsBoxOrderValid(),
		Shipping:        c.Shipping(),
	}
}

type addItemReq struct {
	cart.Item
	// Quantity to add; defaults to 1.
	AddQuantity int `json:"add_quantity"`
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req addItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.ID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id"})
		return
	}
	qty := req.AddQuantity
	if qty == 0 {
		qty = 1
	}

	ctx, cancel := withTimeout(r)
	defer cancel()
	c, err := h.Sessions.MutateCart(ctx, sid, func(c *cart.Cart) { c.AddItem(req.Item, qty) })
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cart storage unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, cartView(c))
}

type updateQuantityReq struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	var req updateQuantityReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := withTimeout(r)
	defer cancel()
	c, err := h.Sessions.MutateCart(ctx, sid, func(c *cart.Cart) { c.UpdateQuantity(id, req.Quantity) })
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cart storage unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, cartView(c))
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	ctx, cancel := withTimeout(r)
	defer cancel()
	c, err := h.Sessions.MutateCart(ctx, sid, func(c *cart.Cart) { c.RemoveItem(id) })
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cart storage unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, cartView(c))
}

func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()
	c, err := h.Sessions.Cart(ctx, sid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cart storage unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, cartView(c))
}

func (h *CartHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()
	if err := h.Sessions.ClearCart(ctx, sid); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cart storage unavailable"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type wishlistView struct {
	Items      []cart.WishlistItem `json:"items"`
	TotalItems int                 `json:"total_items"`
}

func (h *CartHandler) getWishlist(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()
	wl, err := h.Sessions.Wishlist(ctx, sid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "wishlist storage unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, wishlistView{Items: wl.Items(), TotalItems: wl.TotalItems()})
}

func (h *CartHandler) addWishlistItem(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	var it cart.WishlistItem
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if it.ID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id"})
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()
	wl, err := h.Sessions.MutateWishlist(ctx, sid, func(w *cart.Wishlist) { w.AddItem(it) })
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "wishlist storage unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, wishlistView{Items: wl.Items(), TotalItems: wl.TotalItems()})
}

func (h *CartHandler) removeWishlistItem(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	ctx, cancel := withTimeout(r)
	defer cancel()
	wl, err := h.Sessions.MutateWishlist(ctx, sid, func(w *cart.Wishlist) { w.RemoveItem(id) })
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "wishlist storage unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, wishlistView{Items: wl.Items(), TotalItems: wl.TotalItems()})
}

func (h *CartHandler) clearWishlist(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	ctx, cancel := withTimeout(r)
	defer cancel()
	if err := h.Sessions.ClearWishlist(ctx, sid); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "wishlist storage unavailable"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 3*time.Second)
}
