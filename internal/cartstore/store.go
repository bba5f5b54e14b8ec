package cartstore

import (
	"context"

	"github.com/tcgshop/checkout-core/internal/cart"
)

// Store is the durable client storage behind carts and wishlists. The two
// namespaces are independent: clearing one never touches the other.
type Store interface {
	LoadCart(ctx context.Context, sessionID string) (cart.Snapshot, bool, error)
	SaveCart(ctx context.Context, sessionID string, s cart.Snapshot) error
	DeleteCart(ctx context.Context, sessionID string) error

	LoadWishlist(ctx context.Context, sessionID string) (cart.WishlistSnapshot, bool, error)
	SaveWishlist(ctx context.Context, sessionID string, s cart.WishlistSnapshot) error
	DeleteWishlist(ctx context.Context, sessionID string) error
}

// Sessions applies cart/wishlist mutations with write-through persistence:
// state is restored on every call and saved back after every mutation, so a
// reload (or another instance) always observes the latest state.
type Sessions struct {
	Store Store
}

func (s *Sessions) Cart(ctx context.Context, sessionID string) (*cart.Cart, error) {
	snap, ok, err := s.Store.LoadCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return cart.New(), nil
	}
	return cart.Restore(snap), nil
}

// MutateCart loads the session cart, applies fn and persists the result.
func (s *Sessions) MutateCart(ctx context.Context, sessionID string, fn func(*cart.Cart)) (*cart.Cart, error) {
	c, err := s.Cart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	fn(c)
	if err := s.Store.SaveCart(ctx, sessionID, c.Snapshot()); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Sessions) ClearCart(ctx context.Context, sessionID string) error {
	return s.Store.DeleteCart(ctx, sessionID)
}

func (s *Sessions) Wishlist(ctx context.Context, sessionID string) (*cart.Wishlist, error) {
	snap, ok, err := s.Store.LoadWishlist(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return cart.NewWishlist(), nil
	}
	return cart.RestoreWishlist(snap), nil
}

func (s *Sessions) MutateWishlist(ctx context.Context, sessionID string, fn func(*cart.Wishlist)) (*cart.Wishlist, error) {
	w, err := s.Wishlist(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	fn(w)
	if err := s.Store.SaveWishlist(ctx, sessionID, w.Snapshot()); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *Sessions) ClearWishlist(ctx context.Context, sessionID string) error {
	return s.Store.DeleteWishlist(ctx, sessionID)
}
