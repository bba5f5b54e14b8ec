package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tcgshop/checkout-core/internal/cartstore"
	"github.com/tcgshop/checkout-core/internal/config"
	"github.com/tcgshop/checkout-core/internal/httpx"
	kafkax "github.com/tcgshop/checkout-core/internal/kafka"
	"github.com/tcgshop/checkout-core/internal/orders"
	"github.com/tcgshop/checkout-core/internal/postgres"
	"github.com/tcgshop/checkout-core/internal/redisx"
	"github.com/tcgshop/checkout-core/internal/sweep"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers: order lifecycle topics
	pCreated := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024)
	pCreated.Start(ctx)
	pCancelled := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCancelled, 1024)
	pCancelled.Start(ctx)

	sessions := &cartstore.Sessions{Store: &cartstore.RedisStore{RDB: rdb}}
	repo := &orders.Repo{DB: db}
	sweeper := &sweep.Service{
		Store:       &orders.SweepRepo{DB: db},
		Producer:    pCancelled,
		ServiceName: cfg.ServiceName,
	}

	router := httpx.NewRouter()
	ch := &httpx.CartHandler{Sessions: sessions}
	ch.Register(router)
	oh := &httpx.OrdersHandler{
		Repo:     repo,
		Sessions: sessions,
		Producer: pCreated,
		Redis:    rdb,
		Service:  cfg.ServiceName,
		HoldTTL:  cfg.ReservationTTL,
	}
	oh.Register(router)
	sh := &httpx.SweepHandler{
		Runner:      sweeper,
		CronSecret:  cfg.CronSecret,
		AdminAPIKey: cfg.AdminAPIKey,
	}
	sh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pCreated.Close()
	pCancelled.Close()
	cancel()
	pCreated.WaitClosed()
	pCancelled.WaitClosed()
}
