package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tcgshop/checkout-core/internal/config"
	kafkax "github.com/tcgshop/checkout-core/internal/kafka"
	"github.com/tcgshop/checkout-core/internal/orders"
	"github.com/tcgshop/checkout-core/internal/postgres"
	"github.com/tcgshop/checkout-core/internal/sweep"
)

// Standalone periodic runner for deployments without an external cron hitting
// the trigger endpoint. Overlap with a concurrent HTTP-triggered sweep is
// safe; the predicate re-filter makes double runs harmless.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	pCancelled := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCancelled, 1024)
	pCancelled.Start(ctx)

	svc := &sweep.Service{
		Store:       &orders.SweepRepo{DB: db},
		Producer:    pCancelled,
		ServiceName: cfg.ServiceName + "-sweeper",
	}

	run := func() {
		rctx, rcancel := context.WithTimeout(ctx, 30*time.Second)
		defer rcancel()
		res, err := svc.Run(rctx)
		if err != nil {
			log.Printf("sweep failed: %v", err)
			return
		}
		if res.CancelledOrders > 0 || res.ReleasedReservations > 0 {
			log.Printf("sweep: cancelled=%d released=%d", res.CancelledOrders, res.ReleasedReservations)
		}
	}

	log.Printf("sweeper started: interval=%s", cfg.SweepInterval)
	run()
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			run()
		case <-sig:
			log.Println("shutting down sweeper...")
			cancel()
			pCancelled.Close()
			pCancelled.WaitClosed()
			return
		}
	}
}
