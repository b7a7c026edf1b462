package kafka

import (
	"context"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"max.ks1230/fintrack/internal/logger"
	"max.ks1230/fintrack/internal/model/reports"
)

type producerConfig interface {
	Brokers() []string
	ReportsTopic() string
}

type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewProducer(cfg producerConfig) (*Producer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_5_0_0
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Brokers(), config)
	return &Producer{
		producer: producer,
		topic:    cfg.ReportsTopic(),
	}, err
}

// RequestReport queues a dashboard request. The owner id keys the
// message, so one user's requests stay in order on a single partition.
func (p *Producer) RequestReport(_ context.Context, req reports.Request) error {
	value, err := req.Marshal()
	if err != nil {
		return err
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(req.OwnerID),
		Value: sarama.ByteEncoder(value),
	})
	return errors.Wrap(err, "produce report request")
}

func (p *Producer) Close() {
	if err := p.producer.Close(); err != nil {
		logger.Error("failed to close producer", zap.Error(err))
	}
}
