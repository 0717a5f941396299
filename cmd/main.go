package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/storepay/gateway/internal/api"
	"github.com/storepay/gateway/internal/cache"
	"github.com/storepay/gateway/internal/clients/processor"
	"github.com/storepay/gateway/internal/repository"
	"github.com/storepay/gateway/internal/service"
	"github.com/storepay/gateway/pkg/broker"
	"github.com/storepay/gateway/pkg/config"
	"github.com/storepay/gateway/pkg/job"
	"github.com/storepay/gateway/pkg/logger"
	"github.com/storepay/gateway/pkg/postgres"
	"github.com/storepay/gateway/pkg/security"
)

const (
	ReadTimeout  = 3 * time.Second
	WriteTimeout = 2 * time.Second
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.New(".env")
	panicOnErr("load config", err)

	l, err := logger.New(cfg.Logger.Level)
	panicOnErr("create logger", err)

	pool, err := postgres.Connect(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConn)
	panicOnErr("connect to postgres", err)
	defer pool.Close()

	err = postgres.UpMigrations(cfg.Postgres.DSN)
	panicOnErr("up migrations", err)

	repo := repository.New(pool)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	invoiceTTL := time.Duration(cfg.Shop.InvoiceLifetime) * time.Hour
	invoices := cache.NewRedisCache(redisClient, invoiceTTL)

	producer := broker.NewProducer(l, cfg.Kafka.Brokers, cfg.Kafka.OrderPaidTopic)
	defer producer.Close()

	processorClient := processor.NewClient(cfg.Processor)

	s := service.New(repo, processorClient, invoices, producer, cfg.Shop)

	{
		job.NewService().
			RegisterJob("cancel stale pending orders", time.Hour, s.CancelStaleOrders).
			Start(ctx)
	}

	decodedPKey, err := base64.StdEncoding.DecodeString(cfg.Processor.CallbackPublicKey)
	panicOnErr("decode callback public key", err)

	callbackPublicKey, err := security.ParsePublicKey(decodedPKey)
	panicOnErr("parse callback public key", err)

	handler := api.NewHandler(s, security.NewVerifier(callbackPublicKey))
	mw := api.NewMiddleware(cfg.HTTP.APIKeyEnabled, cfg.HTTP.APIKey)

	router := api.NewRouter(handler, mw)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
	}

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Panicf("listen and serve: %s", err)
		}
	}()

	slog.InfoContext(ctx, "service started", "port", cfg.HTTP.Port)

	wg.Add(1)

	go func() {
		defer wg.Done()

		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
		sig := <-ch

		slog.InfoContext(ctx, "got OS signal", "signal", sig.String())

		err = server.Shutdown(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "server shutdown", "error", err)
		}
	}()

	wg.Wait()
}

func panicOnErr(msg string, err error) {
	if err != nil {
		log.Panicf("%s: %s", msg, err)
	}
}
