package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tcgshop/checkout-core/internal/cart"
)

type Repo struct{ DB *pgxpool.Pool }

var (
	ErrEmptyCart  = errors.New("cart is empty")
	ErrNotFound   = errors.New("order not found")
	ErrNotPending = errors.New("order is no longer pending")
)

type InsufficientStockDetail struct {
	ProductID string `json:"product_id"`
	Required  int    `json:"required"`
	Available int    `json:"available"`
}

type InsufficientStockError struct {
	Details []InsufficientStockDetail
}

func (e *InsufficientStockError) Error() string {
	ids := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		ids = append(ids, d.ProductID)
	}
	return fmt.Sprintf("insufficient stock: %s", strings.Join(ids, ", "))
}

func (r *Repo) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, sku, name, image, stock, price_cents, product_type, created_at, updated_at
                                FROM products ORDER BY sku`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Image, &p.Stock, &p.PriceCents, &p.Type, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) GetOrder(ctx context.Context, orderNumber string) (Order, error) {
	var o Order
	err := r.DB.QueryRow(ctx, `SELECT order_number, user_id, status, payment_status, total_cents, shipping_cents,
                                    reservation_expires_at, notes, created_at, updated_at
                             FROM orders WHERE order_number=$1`, orderNumber).
		Scan(&o.OrderNumber, &o.UserID, &o.Status, &o.PaymentStatus, &o.TotalCents, &o.ShippingCents,
			&o.ReservationExpiresAt, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

// CreateFromCart turns a session cart into a PENDING/PENDING order in one
// transaction: prices come from the products table (never trusted from the
// client), stock is locked per product with FOR UPDATE and decremented, and
// one unconfirmed reservation row per line holds the inventory until
// expiresAt. Any shortage rolls the whole thing back and reports per-product
// detail.
func (r *Repo) CreateFromCart(ctx context.Context, userID string, items []cart.Item, shippingCents int, holdFor time.Duration) (Order, error) {
	if len(items) == 0 {
		return Order{}, ErrEmptyCart
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	expiresAt := now.Add(holdFor)
	orderNumber := uuid.NewString()

	total := 0
	var shortages []InsufficientStockDetail
	type pricedLine struct {
		productID  string
		qty        int
		priceCents int
	}
	lines := make([]pricedLine, 0, len(items))

	for _, it := range items {
		var stock, price int
		err := tx.QueryRow(ctx, `SELECT stock, price_cents FROM products WHERE id=$1 FOR UPDATE`, it.ID).Scan(&stock, &price)
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, fmt.Errorf("product not found: %s", it.ID)
		}
		if err != nil {
			return Order{}, err
		}
		if stock < it.Quantity {
			shortages = append(shortages, InsufficientStockDetail{
				ProductID: it.ID, Required: it.Quantity, Available: stock,
			})
			continue
		}
		if _, err := tx.Exec(ctx, `UPDATE products SET stock = stock - $2, updated_at = $3 WHERE id=$1`,
			it.ID, it.Quantity, now); err != nil {
			return Order{}, err
		}
		lines = append(lines, pricedLine{productID: it.ID, qty: it.Quantity, priceCents: price})
		total += price * it.Quantity
	}
	if len(shortages) > 0 {
		return Order{}, &InsufficientStockError{Details: shortages} // rollback via defer
	}
	total += shippingCents

	if _, err := tx.Exec(ctx, `
		INSERT INTO orders(order_number, user_id, status, payment_status, total_cents, shipping_cents,
		                   reservation_expires_at, notes, created_at, updated_at)
		VALUES ($1, $2, 'PENDING', 'PENDING', $3, $4, $5, '', $6, $6)
	`, orderNumber, userID, total, shippingCents, expiresAt, now); err != nil {
		return Order{}, err
	}

	for _, ln := range lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(id, order_number, product_id, qty, price_cents)
			VALUES ($1, $2, $3, $4, $5)`,
			uuid.NewString(), orderNumber, ln.productID, ln.qty, ln.priceCents,
		); err != nil {
			return Order{}, err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO stock_reservations(id, order_number, product_id, quantity, expires_at, confirmed, created_at)
			VALUES ($1, $2, $3, $4, $5, FALSE, $6)`,
			uuid.NewString(), orderNumber, ln.productID, ln.qty, expiresAt, now,
		); err != nil {
			return Order{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, err
	}
	return Order{
		OrderNumber:          orderNumber,
		UserID:               userID,
		Status:               StatusPending,
		PaymentStatus:        PaymentPending,
		TotalCents:           total,
		ShippingCents:        shippingCents,
		ReservationExpiresAt: &expiresAt,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// ConfirmPayment finalizes a pending order: the order moves to PAID/PAID, its
// reservations flip to confirmed (excluding them from the sweep forever) and
// the hold deadline is cleared. The current row is locked and checked against
// the status table first; orders that already progressed or were swept report
// ErrNotPending, unknown order numbers ErrNotFound.
func (r *Repo) ConfirmPayment(ctx context.Context, orderNumber string) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var st Status
	var ps PaymentStatus
	err = tx.QueryRow(ctx, `SELECT status, payment_status FROM orders WHERE order_number=$1 FOR UPDATE`, orderNumber).
		Scan(&st, &ps)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if ps != PaymentPending || !CanTransition(st, StatusPaid) {
		return ErrNotPending
	}

	if _, err := tx.Exec(ctx, `
		UPDATE orders
		SET status='PAID', payment_status='PAID', reservation_expires_at=NULL, updated_at=NOW()
		WHERE order_number=$1
	`, orderNumber); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE stock_reservations SET confirmed=TRUE WHERE order_number=$1
	`, orderNumber); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
