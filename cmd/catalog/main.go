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

	"github.com/gomarket/orders/internal/catalog"
	"github.com/gomarket/orders/internal/config"
	"github.com/gomarket/orders/internal/events"
	"github.com/gomarket/orders/internal/httpx"
	kafkax "github.com/gomarket/orders/internal/kafka"
	"github.com/gomarket/orders/internal/postgres"
	"github.com/gomarket/orders/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	addr := getenv("HTTP_ADDR", ":8082")
	migrations := getenv("MIGRATIONS_PATH", "migrations/catalog")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := postgres.Migrate(cfg.PostgresDSN, migrations); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	repo := &catalog.Repo{DB: db}

	ratingHandler := &catalog.RatingHandler{
		Repo:        repo,
		Redis:       rdb,
		ServiceName: getenv("SERVICE_NAME", "catalog-svc"),
	}
	group := getenv("RATING_EVENTS_GROUP", "catalog-svc")
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, events.TopicProducts, 4)
	go func() {
		log.Printf("rating consumer started: group=%s topic=%s", group, events.TopicProducts)
		if err := cons.Start(ctx, ratingHandler.HandleProductRating); err != nil {
			log.Printf("consumer exit: %v", err)
			cancel()
		}
	}()

	router := httpx.NewRouter()
	(&catalog.Handler{Repo: repo}).Register(router)

	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", addr)
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
	cancel()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
