package sweep

import (
	"context"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/tcgshop/checkout-core/internal/kafka"
	"github.com/tcgshop/checkout-core/internal/orders"
)

// Note stamped onto orders cancelled by the sweep.
const CancelNote = "Auto-cancelled: stock reservation expired before payment"

// Result is what a sweep run reports back to its trigger.
type Result struct {
	CancelledOrders      int       `json:"cancelledOrders"`
	ReleasedReservations int       `json:"releasedReservations"`
	ProcessedAt          time.Time `json:"processedAt"`
}

// Store is the transactional backend of the sweep; orders.SweepRepo is the
// pgx implementation. SweepExpired must be all-or-nothing: on error no
// cancellation or deletion may be visible.
type Store interface {
	CountExpired(ctx context.Context, now time.Time) (int, error)
	SweepExpired(ctx context.Context, now time.Time, note string) (cancelled []string, released int64, err error)
}

// Publisher is satisfied by kafkax.Producer. Nil-able: the sweeper binary can
// run without a broker.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Service runs the reservation expiry sweep. Safe to invoke concurrently:
// the store re-filters on the expired/unconfirmed predicate at transaction
// time, so overlapping runs cannot double-apply.
type Service struct {
	Store       Store
	Producer    Publisher // optional; publishes order.cancelled
	Now         func() time.Time
	ServiceName string
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Run executes one sweep: fast no-op when nothing expired, otherwise one
// atomic cancel-and-release transaction followed by a cancellation event per
// affected order.
func (s *Service) Run(ctx context.Context) (Result, error) {
	now := s.now()
	res := Result{ProcessedAt: now}

	n, err := s.Store.CountExpired(ctx, now)
	if err != nil {
		return res, err
	}
	if n == 0 {
		return res, nil
	}

	cancelled, released, err := s.Store.SweepExpired(ctx, now, CancelNote)
	if err != nil {
		return res, err
	}
	res.CancelledOrders = len(cancelled)
	res.ReleasedReservations = int(released)

	if s.Producer != nil {
		for _, orderNumber := range cancelled {
			s.publishCancelled(orderNumber, now)
		}
	}
	return res, nil
}

func (s *Service) publishCancelled(orderNumber string, at time.Time) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderCancelled,
		EventVersion:  1,
		OccurredAt:    at,
		Producer:      s.ServiceName,
		CorrelationID: orderNumber,
		Payload: kafkax.MustMarshal(orders.OrderCancelledPayload{
			OrderNumber: orderNumber,
			Reason:      orders.ReasonReservationExpired,
		}),
	}
	s.Producer.Publish(orders.PartitionKey(orderNumber), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderCancelled)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
