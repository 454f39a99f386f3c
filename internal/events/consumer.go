package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/tm-acme-shop/acme-shop-tax-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/models"
)

// Calculator is the part of the tax service the consumer drives.
type Calculator interface {
	Calculate(ctx context.Context, req *models.CalculateTaxRequest) (*models.TaxResult, error)
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaConsumer turns calculation request events into tax calculations.
// Results are published by the calculator's own publisher.
type KafkaConsumer struct {
	reader     messageReader
	calculator Calculator
	logger     *zap.Logger
	stopCh     chan struct{}
	stopOnce   sync.Once
}

// NewKafkaConsumer creates a new Kafka-based event consumer.
func NewKafkaConsumer(cfg config.KafkaConfig, calculator Calculator, logger *zap.Logger) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.RequestsTopic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})

	return newKafkaConsumer(reader, calculator, logger)
}

func newKafkaConsumer(reader messageReader, calculator Calculator, logger *zap.Logger) *KafkaConsumer {
	return &KafkaConsumer{
		reader:     reader,
		calculator: calculator,
		logger:     logger.Named("consumer"),
		stopCh:     make(chan struct{}),
	}
}

// Start consumes events until ctx is cancelled or Stop is called.
func (c *KafkaConsumer) Start(ctx context.Context) error {
	c.logger.Info("Starting Kafka consumer")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			c.logger.Info("Kafka consumer stopped")
			return nil
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				select {
				case <-c.stopCh:
					c.logger.Info("Kafka consumer stopped")
					return nil
				default:
				}
				c.logger.Error("Failed to read message", zap.Error(err))
				continue
			}

			c.handleMessage(ctx, msg)
		}
	}
}

// Stop stops the consumer. It is safe to call more than once.
func (c *KafkaConsumer) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		c.reader.Close()
	})
}

func (c *KafkaConsumer) handleMessage(ctx context.Context, msg kafka.Message) {
	c.logger.Debug("Received message",
		zap.String("topic", msg.Topic),
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
	)

	var event models.CalculationRequestedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if event.Type != string(EventTypeCalculationRequested) {
		c.logger.Debug("Ignoring unknown event type", zap.String("type", event.Type))
		return
	}

	gross := event.GrossSalary
	req := &models.CalculateTaxRequest{
		GrossSalary: &gross,
		Deductions:  event.Deductions,
		RequestID:   event.ID,
	}

	result, err := c.calculator.Calculate(ctx, req)
	if err != nil {
		c.logger.Warn("Rejected calculation request",
			zap.String("request_id", event.ID),
			zap.Error(err),
		)
		return
	}

	c.logger.Info("Calculation request handled",
		zap.String("request_id", event.ID),
		zap.Float64("total_tax", result.TotalTax),
	)
}
