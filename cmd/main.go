package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/craftkart/order-service/internal/app"
	"github.com/craftkart/order-service/internal/config"
	"github.com/craftkart/order-service/internal/events"
	"github.com/craftkart/order-service/internal/handler"
	"github.com/craftkart/order-service/internal/mailer"
	"github.com/craftkart/order-service/internal/postgres"
	"github.com/craftkart/order-service/internal/repo"
	"github.com/craftkart/order-service/internal/service"
	"github.com/craftkart/order-service/internal/shiprocket"
	"github.com/craftkart/order-service/internal/signature"
	"github.com/craftkart/order-service/pkg/cache"
	"github.com/craftkart/order-service/pkg/trm"

	"github.com/joho/godotenv"
)

func main() {
	conf := config.New()
	logger := newLogger(conf.Env)
	panicIfErr("invalid config", conf.Validate())

	db, err := postgres.New(conf.Postgres)
	panicIfErr("failed to connect to db", err)
	defer db.Close()
	logger.Info("postgres connected")

	store := repo.NewPostgresRepo(db)
	txManager := trm.NewManager(db)
	variantCache := cache.NewLRUCache(conf.Cache.Capacity, conf.Cache.TTL)

	signer := signature.New(conf.Shiprocket.Secret)

	catalogSvc := service.NewCatalogService(logger, store, variantCache)
	stockLedger := service.NewStockLedger(logger, store)
	mailSvc := mailer.NewLogMailer(logger, conf.Mail)
	publisher := events.NewPublisher(logger, conf.Kafka)

	client := shiprocket.NewClient(logger, conf.Shiprocket, signer)
	pusher := shiprocket.NewCatalogPusher(store, client)
	retryQueue := shiprocket.NewRetryQueue(logger, pusher, shiprocket.QueueConfig{
		PollInterval: conf.Shiprocket.PollInterval,
	})
	catalogSync := service.NewCatalogSync(logger, catalogSvc, retryQueue)

	orderSvc := service.NewOrderService(logger, txManager, store, catalogSvc, stockLedger, catalogSync, mailSvc, publisher)
	wishlistSvc := service.NewWishlistService(logger, store)

	application := app.New(logger, conf)
	application.SetHTTPHandlers(
		handler.NewWebhookHandler(logger, signer, orderSvc),
		handler.NewOrdersHandler(logger, orderSvc),
		handler.NewWishlistHandler(logger, wishlistSvc),
	)
	application.SetRunners(retryQueue, janitorRunner{cache: variantCache})
	application.SetClosers(publisher)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	application.Start(ctx)
	<-ctx.Done()
	application.Stop()
}

func init() {
	godotenv.Load()
}

func newLogger(env string) *slog.Logger {
	switch env {
	case "production":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

func panicIfErr(prefix string, err error) {
	if err != nil {
		panic(prefix + ": " + err.Error())
	}
}

type janitorRunner struct {
	cache *cache.LRUCache
}

func (j janitorRunner) Run(ctx context.Context) error {
	j.cache.StartJanitor(ctx)
	<-ctx.Done()
	return ctx.Err()
}
