package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/tcgshop/checkout-core/internal/cart"
	"github.com/tcgshop/checkout-core/internal/redisx"
)

// RedisStore persists snapshots as JSON under the cart-storage and
// wishlist-storage key namespaces with a rolling session TTL.
type RedisStore struct {
	RDB *redis.Client
}

func (r *RedisStore) LoadCart(ctx context.Context, sessionID string) (cart.Snapshot, bool, error) {
	var s cart.Snapshot
	ok, err := r.load(ctx, fmt.Sprintf(redisx.KeyCart, sessionID), &s)
	return s, ok, err
}

func (r *RedisStore) SaveCart(ctx context.Context, sessionID string, s cart.Snapshot) error {
	return r.save(ctx, fmt.Sprintf(redisx.KeyCart, sessionID), s)
}

func (r *RedisStore) DeleteCart(ctx context.Context, sessionID string) error {
	return r.RDB.Del(ctx, fmt.Sprintf(redisx.KeyCart, sessionID)).Err()
}

func (r *RedisStore) LoadWishlist(ctx context.Context, sessionID string) (cart.WishlistSnapshot, bool, error) {
	var s cart.WishlistSnapshot
	ok, err := r.load(ctx, fmt.Sprintf(redisx.KeyWishlist, sessionID), &s)
	return s, ok, err
}

func (r *RedisStore) SaveWishlist(ctx context.Context, sessionID string, s cart.WishlistSnapshot) error {
	return r.save(ctx, fmt.Sprintf(redisx.KeyWishlist, sessionID), s)
}

func (r *RedisStore) DeleteWishlist(ctx context.Context, sessionID string) error {
	return r.RDB.Del(ctx, fmt.Sprintf(redisx.KeyWishlist, sessionID)).Err()
}

func (r *RedisStore) load(ctx context.Context, key string, out any) (bool, error) {
	b, err := r.RDB.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, out); err != nil {
		// Corrupt snapshot: start the session fresh rather than brick it.
		return false, nil
	}
	return true, nil
}

func (r *RedisStore) save(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.RDB.Set(ctx, key, b, redisx.TTLSession).Err()
}
