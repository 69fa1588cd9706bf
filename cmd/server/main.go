package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"giftshop/internal/auth"
	"giftshop/internal/config"
	"giftshop/internal/handler"
	"giftshop/internal/infrastructure/cache"
	"giftshop/internal/infrastructure/database"
	"giftshop/internal/infrastructure/mq"
	"giftshop/internal/job"
	"giftshop/internal/service"
	"giftshop/internal/store"
	"giftshop/internal/store/gormstore"
	"giftshop/internal/store/memstore"
	"giftshop/pkg/idgen"
)

func main() {
	cfg := config.LoadConfig("config/config.yaml")

	idgen.Init(1)

	// One store behind one interface; which backend is active is a
	// wiring decision made exactly here.
	var st store.Store
	switch cfg.Storage.Driver {
	case "mysql":
		db := database.InitMySQL(&cfg.MySQL)
		st = gormstore.New(db)
	case "memory":
		st = memstore.New()
		log.Println("WARNING: memory storage driver, state is not durable")
	default:
		log.Fatalf("unknown storage driver: %q", cfg.Storage.Driver)
	}

	redisClient := cache.InitRedis(&cfg.Redis)
	catalogCache := cache.NewCatalogCache(redisClient,
		time.Duration(cfg.Business.CatalogCacheTTL)*time.Second)

	mq.InitKafka(&cfg.Kafka)
	defer mq.CloseKafka()

	verifier := auth.NewVerifier(cfg.Auth.BotToken,
		time.Duration(cfg.Auth.MaxCredAge)*time.Second)

	accountService := service.NewAccountService(st, cfg)
	catalogService, err := service.NewCatalogService(st, catalogCache, cfg)
	if err != nil {
		log.Fatalf("catalog service: %v", err)
	}
	purchaseService := service.NewPurchaseService(st, catalogCache, cfg)
	creditService := service.NewCreditService(st, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	outboxSender := job.NewOutboxSender(st, cfg)
	go outboxSender.Start(ctx)

	consumerGroup, err := mq.NewConsumerGroup(&cfg.Kafka)
	if err != nil {
		log.Fatalf("failed to create Kafka consumer group: %v", err)
	}
	defer consumerGroup.Close()

	ingestConsumer := job.NewIngestConsumer(consumerGroup, catalogService, cfg)
	go ingestConsumer.Start(ctx)

	h := handler.NewHandler(accountService, catalogService, purchaseService, creditService, cfg.Auth.AdminUserID)
	router := handler.SetupRouter(h, verifier)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("server listening on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	log.Println("server stopped")
}
