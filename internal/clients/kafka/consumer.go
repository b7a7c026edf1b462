package kafka

import (
	"context"
	"fmt"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"max.ks1230/fintrack/internal/logger"
	"max.ks1230/fintrack/internal/model/reports"
)

type consumerConfig interface {
	producerConfig
	ConsumerGroup() string
}

type reportGenerator interface {
	Generate(ctx context.Context, ownerID, period string) (string, error)
}

type reportSender interface {
	SendMessage(text string, chatID int64) error
}

type reportCache interface {
	CacheReport(ownerID, period, report string) error
}

// Consumer drains the report request topic: generate, cache, deliver.
type Consumer struct {
	consumerGroup sarama.ConsumerGroup
	topic         string
	generator     reportGenerator
	sender        reportSender
	cache         reportCache
}

func NewConsumer(cfg consumerConfig, generator reportGenerator, sender reportSender, cache reportCache) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_5_0_0
	config.Consumer.Offsets.Initial = sarama.OffsetOldest

	consumerGroup, err := sarama.NewConsumerGroup(cfg.Brokers(), cfg.ConsumerGroup(), config)
	return &Consumer{
		consumerGroup: consumerGroup,
		topic:         cfg.ReportsTopic(),
		generator:     generator,
		sender:        sender,
		cache:         cache,
	}, err
}

func (c *Consumer) StartConsuming(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			err := c.consumerGroup.Consume(ctx, []string{c.topic}, c)
			if err != nil {
				return errors.Wrap(err, fmt.Sprintf("consume from %s", c.topic))
			}
		}
	}
}

func (c *Consumer) Setup(sarama.ConsumerGroupSession) error {
	logger.Info("consumer - setup")
	return nil
}

func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error {
	logger.Info("consumer - cleanup")
	return nil
}

func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		req, err := reports.UnmarshalRequest(message.Value)
		if err != nil {
			logger.Error("cannot unmarshal kafka message", zap.Error(err))
		} else {
			logger.Info(
				"received report request",
				zap.ByteString("key", message.Key),
				zap.String("ownerID", req.OwnerID),
				zap.String("period", req.Period),
			)
			c.processRequest(session.Context(), req)
		}
		session.MarkMessage(message, "")
	}

	return nil
}

func (c *Consumer) processRequest(ctx context.Context, req reports.Request) {
	report, err := c.generator.Generate(ctx, req.OwnerID, req.Period)
	if err != nil {
		logger.Error("failed to generate report", zap.Error(err))
		_ = c.sender.SendMessage("Can't build your dashboard atm. Try later", req.ChatID)
		return
	}

	if err = c.cache.CacheReport(req.OwnerID, req.Period, report); err != nil {
		logger.Warn("failed to cache report", zap.Error(err))
	}
	if err = c.sender.SendMessage(report, req.ChatID); err != nil {
		logger.Error("failed to send report", zap.Error(err))
	}
}
