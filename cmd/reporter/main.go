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
	"max.ks1230/fintrack/internal/model/reports"
	"max.ks1230/fintrack/internal/model/storage"
)

const serviceName = "fintrack-reporter"

func main() {
	logger.Info("Reporter init - start")

	conf, err := config.New()
	if err != nil {
		logger.Fatal("failed to init config:", zap.Error(err))
	}

	tracerCloser, err := initTracing(serviceName)
	if err != nil {
		logger.Fatal("failed to init tracing:", zap.Error(err))
	}
	defer closeQuietly(tracerCloser)

	// The reporter shares data with the bot, so it needs the durable
	// adapter.
	db, err := storage.NewPostgresStorage(conf.Postgres())
	if err != nil {
		logger.Fatal("failed to init postgres:", zap.Error(err))
	}
	if err = db.Migrate(); err != nil {
		logger.Fatal("failed to migrate postgres:", zap.Error(err))
	}

	generator := reports.NewGenerator(conf.App(), db)

	sender, err := tg.New(conf.Telegram())
	if err != nil {
		logger.Fatal("failed to init telegram client:", zap.Error(err))
	}

	cacheClient, err := cache.NewMemcache(conf.Memcached())
	if err != nil {
		logger.Fatal("failed to init memcached:", zap.Error(err))
	}

	consumer, err := kafka.NewConsumer(conf.Kafka(), generator, sender, cacheClient)
	if err != nil {
		logger.Fatal("failed to init kafka consumer:", zap.Error(err))
	}

	logger.Info("Reporter init - end")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err = consumer.StartConsuming(ctx); err != nil {
		logger.Fatal("failed to start consuming", zap.Error(err))
	}
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
