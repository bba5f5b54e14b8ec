package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/tcgshop/checkout-core/internal/cart"
	"github.com/tcgshop/checkout-core/internal/cartstore"
	kafkax "github.com/tcgshop/checkout-core/internal/kafka"
	"github.com/tcgshop/checkout-core/internal/orders"
	"github.com/tcgshop/checkout-core/internal/redisx"
	"github.com/tcgshop/checkout-core/internal/sweep"
)

// OrderStore is satisfied by *orders.Repo.
type OrderStore interface {
	ListProducts(ctx context.Context) ([]orders.Product, error)
	GetOrder(ctx context.Context, orderNumber string) (orders.Order, error)
	CreateFromCart(ctx context.Context, userID string, items []cart.Item, shippingCents int, holdFor time.Duration) (orders.Order, error)
	ConfirmPayment(ctx context.Context, orderNumber string) error
}

type OrdersHandler struct {
	Repo     OrderStore
	Sessions *cartstore.Sessions
	Producer sweep.Publisher // order.created
	Redis    *redis.Client   // optional status cache
	Service  string
	HoldTTL  time.Duration
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Get("/products", h.listProducts)
	r.Post("/checkout", h.checkout)
	r.Get("/orders/{orderNumber}", h.getOrder)
	r.Post("/orders/{orderNumber}/payment", h.confirmPayment)
}

func (h *OrdersHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Repo.ListProducts(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "catalog unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

type checkoutReq struct {
	UserID string `json:"user_id"`
}

type checkoutResp struct {
	OrderNumber          string    `json:"order_number"`
	TotalCents           int       `json:"total_cents"`
	ShippingCents        int       `json:"shipping_cents"`
	ReservationExpiresAt time.Time `json:"reservation_expires_at"`
}

// checkout turns the session cart into a PENDING order with a time-boxed
// stock hold. The box-lot rule is a hard gate checked before anything
// touches the database; violating it is a validation error, never a server
// error.
func (h *OrdersHandler) checkout(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req checkoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing user_id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	c, err := h.Sessions.Cart(ctx, sid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cart storage unavailable"})
		return
	}
	if c.Len() == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cart is empty"})
		return
	}
	if !c.IsBoxOrderValid() {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":       fmt.Sprintf("box items must be purchased in lots of at least %d", cart.MinBoxLot),
			"box_count":   c.BoxCount(),
			"min_box_lot": cart.MinBoxLot,
		})
		return
	}

	shipping := c.Shipping()
	o, err := h.Repo.CreateFromCart(ctx, req.UserID, c.Items(), shipping.ShippingCents, h.HoldTTL)
	if err != nil {
		var stockErr *orders.InsufficientStockError
		if errors.As(err, &stockErr) {
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":   "insufficient stock",
				"details": stockErr.Details,
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "checkout failed"})
		return
	}

	// The cart is consumed by the order; a failed clear only leaves a stale
	// session cart behind, never a broken order.
	_ = h.Sessions.ClearCart(ctx, sid)

	if h.Redis != nil {
		statusKey := fmt.Sprintf(redisx.KeyOrderStatus, o.OrderNumber)
		_ = h.Redis.Set(ctx, statusKey, `{"status":"PENDING","payment_status":"PENDING"}`, redisx.TTLStatusCache).Err()
	}

	h.publishCreated(r, o, c.Items())

	writeJSON(w, http.StatusCreated, checkoutResp{
		OrderNumber:          o.OrderNumber,
		TotalCents:           o.TotalCents,
		ShippingCents:        o.ShippingCents,
		ReservationExpiresAt: *o.ReservationExpiresAt,
	})
}

func (h *OrdersHandler) publishCreated(r *http.Request, o orders.Order, items []cart.Item) {
	if h.Producer == nil {
		return
	}
	lines := make([]orders.LineItem, 0, len(items))
	for _, it := range items {
		lines = append(lines, orders.LineItem{ProductID: it.ID, Qty: it.Quantity, PriceCents: it.PriceCents})
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: o.OrderNumber,
		Payload: kafkax.MustMarshal(orders.OrderCreatedPayload{
			OrderNumber:   o.OrderNumber,
			UserID:        o.UserID,
			Items:         lines,
			TotalCents:    o.TotalCents,
			ShippingCents: o.ShippingCents,
		}),
	}
	h.Producer.Publish(orders.PartitionKey(o.OrderNumber), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// status cache first
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderNumber)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	o, err := h.Repo.GetOrder(ctx, orderNumber)
	if errors.Is(err, orders.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "order lookup failed"})
		return
	}
	body := map[string]any{"status": o.Status, "payment_status": o.PaymentStatus}
	b, _ := json.Marshal(body)
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *OrdersHandler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "orderNumber")
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	err := h.Repo.ConfirmPayment(ctx, orderNumber)
	if errors.Is(err, orders.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if errors.Is(err, orders.ErrNotPending) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "order is no longer pending"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "payment confirmation failed"})
		return
	}

	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrderStatus, orderNumber)
		_ = h.Redis.Set(ctx, key, `{"status":"PAID","payment_status":"PAID"}`, redisx.TTLStatusCache).Err()
	}
	writeJSON(w, http.StatusOK, map[string]string{"order_number": orderNumber, "status": string(orders.StatusPaid)})
}
