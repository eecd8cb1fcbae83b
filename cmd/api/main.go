package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/gomarket/orders/internal/basket"
	"github.com/gomarket/orders/internal/catalog"
	"github.com/gomarket/orders/internal/config"
	"github.com/gomarket/orders/internal/events"
	"github.com/gomarket/orders/internal/httpx"
	kafkax "github.com/gomarket/orders/internal/kafka"
	"github.com/gomarket/orders/internal/orders"
	"github.com/gomarket/orders/internal/payment"
	"github.com/gomarket/orders/internal/postgres"
	"github.com/gomarket/orders/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	if err := postgres.Migrate(cfg.PostgresDSN, cfg.MigrationsPath); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka: rating events out, user events in
	prod := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicProducts, 1024)
	prod.Start(ctx)

	baskets := &basket.Repo{DB: db}
	userHandler := &basket.UserEventHandler{
		Store:       baskets,
		Redis:       rdb,
		ServiceName: cfg.ServiceName,
	}
	group := getenv("USER_EVENTS_GROUP", "order-svc")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, events.TopicUsers, 4)
	go func() {
		log.Printf("user event consumer started: group=%s topic=%s", group, events.TopicUsers)
		if err := cons.Start(ctx, userHandler.HandleUserEvent); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	// Saga wiring
	catalogClient := catalog.NewHTTPClient(cfg.CatalogURL, cfg.RPCTimeout)
	orderRepo := &orders.Repo{DB: db}
	saga := &orders.Saga{
		Baskets:    baskets,
		Orders:     orderRepo,
		Reconciler: &basket.Reconciler{Store: baskets, Catalog: catalogClient},
		Payments:   payment.NewHTTPClient(cfg.PaymentURL, cfg.RPCTimeout),
		Catalog:    catalogClient,
	}
	ratings := &orders.RatingService{
		Orders:      orderRepo,
		Producer:    prod,
		ServiceName: cfg.ServiceName,
	}

	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{Saga: saga, Ratings: ratings, Orders: orderRepo, Redis: rdb}
	bh := &httpx.BasketHandler{Store: baskets, Catalog: catalogClient}
	router.Group(func(gr chi.Router) {
		gr.Use(httpx.Auth([]byte(cfg.JWTSecret)))
		oh.Register(gr)
		bh.Register(gr)
	})

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
	prod.Close()
	cancel()
	prod.WaitClosed()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
