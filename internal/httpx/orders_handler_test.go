package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"

	"github.com/tcgshop/checkout-core/internal/cart"
	"github.com/tcgshop/checkout-core/internal/cartstore"
	"github.com/tcgshop/checkout-core/internal/orders"
)

type fakeOrderStore struct {
	order       orders.Order
	createErr   error
	confirmErr  error
	getErr      error
	createCalls int
	gotUserID   string
	gotItems    []cart.Item
	gotShipping int
}

func (f *fakeOrderStore) ListProducts(_ context.Context) ([]orders.Product, error) {
	return nil, nil
}

func (f *fakeOrderStore) GetOrder(_ context.Context, _ string) (orders.Order, error) {
	if f.getErr != nil {
		return orders.Order{}, f.getErr
	}
	return f.order, nil
}

func (f *fakeOrderStore) CreateFromCart(_ context.Context, userID string, items []cart.Item, shippingCents int, _ time.Duration) (orders.Order, error) {
	f.createCalls++
	f.gotUserID = userID
	f.gotItems = items
	f.gotShipping = shippingCents
	if f.createErr != nil {
		return orders.Order{}, f.createErr
	}
	return f.order, nil
}

func (f *fakeOrderStore) ConfirmPayment(_ context.Context, _ string) error {
	return f.confirmErr
}

type capturePublisher struct {
	keys   []string
	events []orders.Envelope
}

func (p *capturePublisher) Publish(key, value []byte, _ ...kafkago.Header) {
	p.keys = append(p.keys, string(key))
	var env orders.Envelope
	if err := json.Unmarshal(value, &env); err == nil {
		p.events = append(p.events, env)
	}
}

func pendingTestOrder(n string, total, shipping int) orders.Order {
	exp := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	return orders.Order{
		OrderNumber:          n,
		UserID:               "user-1",
		Status:               orders.StatusPending,
		PaymentStatus:        orders.PaymentPending,
		TotalCents:           total,
		ShippingCents:        shipping,
		ReservationExpiresAt: &exp,
	}
}

func newOrdersServer(store *fakeOrderStore, pub *capturePublisher) (*httptest.Server, *cartstore.Sessions) {
	sessions := &cartstore.Sessions{Store: newMemCartStore()}
	r := NewRouter()
	h := &OrdersHandler{
		Repo:     store,
		Sessions: sessions,
		Service:  "test-api",
		HoldTTL:  30 * time.Minute,
	}
	if pub != nil {
		h.Producer = pub
	}
	h.Register(r)
	return httptest.NewServer(r), sessions
}

func seedCart(t *testing.T, sessions *cartstore.Sessions, sid string, items ...cart.Item) {
	t.Helper()
	_, err := sessions.MutateCart(context.Background(), sid, func(c *cart.Cart) {
		for _, it := range items {
			c.AddItem(it, it.Quantity)
		}
	})
	assert.NoError(t, err)
}

func postCheckout(t *testing.T, url, sid, userID string) (*http.Response, map[string]any) {
	t.Helper()
	b, err := json.Marshal(map[string]string{"user_id": userID})
	assert.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url+"/checkout", bytes.NewReader(b))
	assert.NoError(t, err)
	if sid != "" {
		req.Header.Set("X-Session-Id", sid)
	}
	resp, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp, body
}

func TestCheckout_RequiresSessionAndUser(t *testing.T) {
	store := &fakeOrderStore{}
	srv, _ := newOrdersServer(store, nil)
	defer srv.Close()

	resp, _ := postCheckout(t, srv.URL, "", "user-1")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := postCheckout(t, srv.URL, "sid-1", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "missing user_id", body["error"])

	assert.Equal(t, 0, store.createCalls)
}

func TestCheckout_EmptyCart(t *testing.T) {
	store := &fakeOrderStore{}
	srv, _ := newOrdersServer(store, nil)
	defer srv.Close()

	resp, body := postCheckout(t, srv.URL, "sid-1", "user-1")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "cart is empty", body["error"])
	assert.Equal(t, 0, store.createCalls)
}

func TestCheckout_BoxLotGateBlocksSubmission(t *testing.T) {
	store := &fakeOrderStore{}
	srv, sessions := newOrdersServer(store, nil)
	defer srv.Close()

	// two boxes: below the minimum lot, checkout must be blocked
	seedCart(t, sessions, "sid-1", cart.Item{
		ID: "b1", Name: "Booster Box", PriceCents: 30000, Quantity: 2, Stock: 10, Type: cart.TypeBox,
	})

	resp, body := postCheckout(t, srv.URL, "sid-1", "user-1")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "box items must be purchased in lots of at least 5", body["error"])
	assert.Equal(t, float64(2), body["box_count"])
	assert.Equal(t, float64(cart.MinBoxLot), body["min_box_lot"])

	// a validation failure, not a server error: the store is never touched
	assert.Equal(t, 0, store.createCalls)

	// the cart survives for the shopper to fix
	c, err := sessions.Cart(context.Background(), "sid-1")
	assert.NoError(t, err)
	assert.Equal(t, 2, c.TotalItems())
}

func TestCheckout_FullBoxLotPasses(t *testing.T) {
	store := &fakeOrderStore{order: pendingTestOrder("ord-1", 150000, 0)}
	srv, sessions := newOrdersServer(store, nil)
	defer srv.Close()

	seedCart(t, sessions, "sid-1", cart.Item{
		ID: "b1", Name: "Booster Box", PriceCents: 30000, Quantity: 5, Stock: 10, Type: cart.TypeBox,
	})

	resp, _ := postCheckout(t, srv.URL, "sid-1", "user-1")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, store.createCalls)
}

func TestCheckout_InsufficientStock(t *testing.T) {
	store := &fakeOrderStore{createErr: &orders.InsufficientStockError{
		Details: []orders.InsufficientStockDetail{{ProductID: "p1", Required: 3, Available: 1}},
	}}
	srv, sessions := newOrdersServer(store, nil)
	defer srv.Close()

	seedCart(t, sessions, "sid-1", cart.Item{
		ID: "p1", Name: "card", PriceCents: 500, Quantity: 3, Stock: 5, Type: cart.TypeSingle,
	})

	resp, body := postCheckout(t, srv.URL, "sid-1", "user-1")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "insufficient stock", body["error"])

	details, ok := body["details"].([]any)
	assert.True(t, ok)
	assert.Len(t, details, 1)
	d := details[0].(map[string]any)
	assert.Equal(t, "p1", d["product_id"])
	assert.Equal(t, float64(3), d["required"])
	assert.Equal(t, float64(1), d["available"])
}

func TestCheckout_SuccessConsumesCartAndPublishes(t *testing.T) {
	store := &fakeOrderStore{order: pendingTestOrder("ord-1", 48500, 4500)}
	pub := &capturePublisher{}
	srv, sessions := newOrdersServer(store, pub)
	defer srv.Close()

	// 44000 in singles: below the free-shipping threshold, flat fee applies
	seedCart(t, sessions, "sid-1", cart.Item{
		ID: "p1", Name: "card", PriceCents: 22000, Quantity: 2, Stock: 5, Type: cart.TypeSingle,
	})

	resp, body := postCheckout(t, srv.URL, "sid-1", "user-1")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "ord-1", body["order_number"])
	assert.Equal(t, float64(48500), body["total_cents"])
	assert.Equal(t, float64(4500), body["shipping_cents"])

	// the store saw the session's items and the cart-derived shipping fee
	assert.Equal(t, "user-1", store.gotUserID)
	assert.Len(t, store.gotItems, 1)
	assert.Equal(t, 2, store.gotItems[0].Quantity)
	assert.Equal(t, cart.ShippingFeeCents, store.gotShipping)

	// the cart is consumed by the order
	c, err := sessions.Cart(context.Background(), "sid-1")
	assert.NoError(t, err)
	assert.Equal(t, 0, c.Len())

	// one order.created event, keyed and correlated by order number
	assert.Equal(t, []string{"ord-1"}, pub.keys)
	assert.Len(t, pub.events, 1)
	assert.Equal(t, orders.EventOrderCreated, pub.events[0].EventType)
	assert.Equal(t, "ord-1", pub.events[0].CorrelationID)
}

func TestGetOrder(t *testing.T) {
	store := &fakeOrderStore{order: pendingTestOrder("ord-1", 1000, 0)}
	srv, _ := newOrdersServer(store, nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/orders/ord-1")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "PENDING", body["status"])
	assert.Equal(t, "PENDING", body["payment_status"])
}

func TestGetOrder_NotFound(t *testing.T) {
	store := &fakeOrderStore{getErr: orders.ErrNotFound}
	srv, _ := newOrdersServer(store, nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/orders/ghost")
	assert.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestConfirmPayment(t *testing.T) {
	tests := []struct {
		name       string
		confirmErr error
		wantCode   int
	}{
		{name: "pending order confirms", confirmErr: nil, wantCode: http.StatusOK},
		{name: "already progressed", confirmErr: orders.ErrNotPending, wantCode: http.StatusConflict},
		{name: "unknown order", confirmErr: orders.ErrNotFound, wantCode: http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &fakeOrderStore{confirmErr: tc.confirmErr}
			srv, _ := newOrdersServer(store, nil)
			defer srv.Close()

			resp, err := http.Post(srv.URL+"/orders/ord-1/payment", "application/json", nil)
			assert.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tc.wantCode, resp.StatusCode)
		})
	}
}
