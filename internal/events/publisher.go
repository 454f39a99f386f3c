package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/tm-acme-shop/acme-shop-tax-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/middleware"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/models"
)

// EventType represents the type of tax event.
type EventType string

const (
	EventTypeTaxCalculated        EventType = "tax.calculated"
	EventTypeCalculationRequested EventType = "tax.calculation_requested"
)

// TaxCalculatedEvent is published after every successful calculation.
type TaxCalculatedEvent struct {
	ID            string            `json:"id"`
	Type          EventType         `json:"type"`
	RequestID     string            `json:"request_id"`
	Result        *models.TaxResult `json:"result"`
	Timestamp     time.Time         `json:"timestamp"`
	CorrelationID string            `json:"correlation_id,omitempty"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes tax events to Kafka.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *zap.Logger
}

// NewKafkaPublisher creates a new Kafka-based event publisher.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.ResultsTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer: writer,
		topic:  cfg.ResultsTopic,
		logger: logger.Named("publisher"),
	}
}

// PublishTaxCalculated publishes a tax.calculated event for result.
func (p *KafkaPublisher) PublishTaxCalculated(ctx context.Context, requestID string, result *models.TaxResult) error {
	event := newTaxCalculatedEvent(ctx, requestID, result)

	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "encode event")
	}

	msg := kafka.Message{
		Key:   []byte(event.RequestID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event",
			zap.String("event_id", event.ID),
			zap.String("request_id", event.RequestID),
			zap.Error(err),
		)
		return errors.Wrap(err, "write kafka message")
	}

	p.logger.Info("Event published",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("request_id", event.RequestID),
	)
	return nil
}

// Close closes the Kafka writer.
func (p *KafkaPublisher) Close() error {
	p.logger.Info("Closing Kafka publisher")
	return p.writer.Close()
}

func newTaxCalculatedEvent(ctx context.Context, requestID string, result *models.TaxResult) *TaxCalculatedEvent {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return &TaxCalculatedEvent{
		ID:            uuid.NewString(),
		Type:          EventTypeTaxCalculated,
		RequestID:     requestID,
		Result:        result,
		Timestamp:     time.Now().UTC(),
		CorrelationID: middleware.CorrelationIDFromContext(ctx),
	}
}

// MockEventPublisher records published events for tests.
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []*TaxCalculatedEvent
	Err    error
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{
		Events: make([]*TaxCalculatedEvent, 0),
	}
}

func (m *MockEventPublisher) PublishTaxCalculated(ctx context.Context, requestID string, result *models.TaxResult) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, newTaxCalculatedEvent(ctx, requestID, result))
	return nil
}

// Published returns a snapshot of the recorded events.
func (m *MockEventPublisher) Published() []*TaxCalculatedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*TaxCalculatedEvent(nil), m.Events...)
}
