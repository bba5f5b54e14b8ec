package orders

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SweepRepo struct{ DB *pgxpool.Pool }

// CountExpired is the sweep's idempotent fast path: the number of
// unconfirmed reservations whose hold deadline has passed.
func (r *SweepRepo) CountExpired(ctx context.Context, now time.Time) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM stock_reservations
		WHERE expires_at < $1 AND confirmed = FALSE`, now).Scan(&n)
	return n, err
}

// SweepExpired reconciles abandoned checkouts in one transaction:
//
//  1. collect the distinct non-null order numbers behind expired unconfirmed
//     reservations;
//  2. cancel each such order only while it is still PENDING on both status
//     and payment status (an order whose payment raced the sweep is left
//     untouched), clearing the hold deadline and stamping an explanatory
//     note;
//  3. restock the held quantities and delete every reservation matching the
//     original expired/unconfirmed predicate, orphans included.
//
// Everything re-filters on the same predicate at execution time, so
// overlapping sweeps cannot double-apply; a failed run rolls back completely
// and the next run re-selects the same still-expired rows.
func (r *SweepRepo) SweepExpired(ctx context.Context, now time.Time, note string) (cancelled []string, released int64, err error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT DISTINCT order_number FROM stock_reservations
		WHERE expires_at < $1 AND confirmed = FALSE AND order_number IS NOT NULL`, now)
	if err != nil {
		return nil, 0, err
	}
	var orderNumbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			rows.Close()
			return nil, 0, err
		}
		orderNumbers = append(orderNumbers, n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, n := range orderNumbers {
		ct, err := tx.Exec(ctx, `
			UPDATE orders
			SET status='CANCELLED', payment_status='CANCELLED', reservation_expires_at=NULL,
			    notes = CASE WHEN notes = '' THEN $2 ELSE notes || E'\n' || $2 END,
			    updated_at = $3
			WHERE order_number=$1 AND status='PENDING' AND payment_status='PENDING'
		`, n, note, now)
		if err != nil {
			return nil, 0, err
		}
		if ct.RowsAffected() == 1 {
			cancelled = append(cancelled, n)
		}
	}

	// Release the held inventory back to stock before dropping the rows.
	if _, err := tx.Exec(ctx, `
		UPDATE products p
		SET stock = p.stock + held.qty, updated_at = $1
		FROM (
			SELECT product_id, SUM(quantity) AS qty
			FROM stock_reservations
			WHERE expires_at < $1 AND confirmed = FALSE
			GROUP BY product_id
		) held
		WHERE p.id = held.product_id
	`, now); err != nil {
		return nil, 0, err
	}

	ct, err := tx.Exec(ctx, `
		DELETE FROM stock_reservations
		WHERE expires_at < $1 AND confirmed = FALSE`, now)
	if err != nil {
		return nil, 0, err
	}
	released = ct.RowsAffected()

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, err
	}
	return cancelled, released, nil
}
