package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"go.uber.org/zap"

	"max.ks1230/fintrack/internal/clients/cache"
	"max.ks1230/fintrack/internal/clients/kafka"
	"max.ks1230/fintrack/internal/clients/tg"
	"max.ks1230/fintrack/internal/config"
	"max.ks1230/fintrack/internal/logger"
	"max.ks1230/fintrack/internal/model/budgets"
	"max.ks1230/fintrack/internal/model/bus"
	"max.ks1230/fintrack/internal/model/ledger"
	"max.ks1230/fintrack/internal/model/messages"
	"max.ks1230/fintrack/internal/model/reports"
	"max.ks1230/fintrack/internal/model/settings"
	"max.ks1230/fintrack/internal/model/storage"
	"max.ks1230/fintrack/internal/model/users"
)

const serviceName = "fintrack-bot"

func main() {
	logger.Info("Bot init - start")

	conf, err := config.New()
	if err != nil {
		logger.Fatal("failed to init config:", zap.Error(err))
	}

	tracerCloser, err := initTracing(serviceName)
	if err != nil {
		logger.Fatal("failed to init tracing:", zap.Error(err))
	}
	defer closeQuietly(tracerCloser)

	store, err := newStorage(conf)
	if err != nil {
		logger.Fatal("failed to init storage:", zap.Error(err))
	}

	changeBus := bus.New()
	userStore := users.NewStore(store)
	ledgerModel := ledger.New(store, changeBus)
	budgetStore := budgets.New(store, changeBus)
	settingsStore := settings.New(store, changeBus)

	cacheClient, err := cache.NewMemcache(conf.Memcached())
	if err != nil {
		logger.Fatal("failed to init memcached:", zap.Error(err))
	}
	subscribeCacheInvalidation(changeBus, cacheClient)

	producer, err := kafka.NewProducer(conf.Kafka())
	if err != nil {
		logger.Fatal("failed to init kafka producer:", zap.Error(err))
	}
	defer producer.Close()

	client, err := tg.New(conf.Telegram())
	if err != nil {
		logger.Fatal("failed to init client:", zap.Error(err))
	}

	handler := messages.NewHandler(userStore, ledgerModel, budgetStore, settingsStore, producer, cacheClient)
	msgService := messages.NewService(client, handler)

	logger.Info("Bot init - end")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	client.ListenUpdates(ctx, msgService)
}

// newStorage picks the persistence adapter. The core works against any
// of them; only durability differs.
func newStorage(conf *config.Service) (storageAdapter, error) {
	switch conf.Storage().Mode() {
	case config.StorageMemory:
		return storage.NewInMemStorage(), nil
	case config.StorageFile:
		return storage.NewFileStorage(conf.Storage().FilePath())
	case config.StoragePostgres:
		pg, err := storage.NewPostgresStorage(conf.Postgres())
		if err != nil {
			return nil, err
		}
		if err = pg.Migrate(); err != nil {
			return nil, err
		}
		return pg, nil
	}
	return nil, errors.Errorf("unknown storage mode %q", conf.Storage().Mode())
}

type storageAdapter interface {
	users.UserStorage
	ledger.Storage
}

// Dashboards are cached per owner and period; any change to a user's
// data makes every cached period stale.
func subscribeCacheInvalidation(changeBus *bus.Bus, cacheClient *cache.MemcacheClient) {
	invalidate := func(ev bus.Event) {
		if err := cacheClient.InvalidateReports(ev.OwnerID, reports.Periods()); err != nil {
			logger.Warn("failed to invalidate report cache", zap.Error(err))
		}
	}
	changeBus.Subscribe(bus.TransactionsChanged, invalidate)
	changeBus.Subscribe(bus.BudgetChanged, invalidate)
	changeBus.Subscribe(bus.SettingsChanged, invalidate)
}

func initTracing(service string) (io.Closer, error) {
	cfg := jaegercfg.Configuration{
		ServiceName: service,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  "const",
			Param: 1,
		},
	}
	tracer, closer, err := cfg.NewTracer()
	if err != nil {
		return nil, errors.Wrap(err, "cannot init tracing")
	}
	opentracing.SetGlobalTracer(tracer)
	return closer, nil
}

func closeQuietly(c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Error("close", zap.Error(err))
	}
}
