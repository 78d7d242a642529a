package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"petpos_backend/pkg/utils"
)

// KafkaPublisher publishes events to Kafka with a synchronous producer.
type KafkaPublisher struct {
	producer    sarama.SyncProducer
	salesTopic  string
	ordersTopic string
	observe     func(eventType string, err error)
}

// NewProducerConfig returns the producer settings used for event publishing.
func NewProducerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.MaxMessageBytes = 1000000
	return config
}

// NewKafkaPublisher connects a producer to brokers.
func NewKafkaPublisher(brokers []string, salesTopic, ordersTopic string) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	utils.LogInfo("Kafka publisher initialized", map[string]interface{}{"brokers": brokers})
	return NewKafkaPublisherWithProducer(producer, salesTopic, ordersTopic), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer.
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, salesTopic, ordersTopic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, salesTopic: salesTopic, ordersTopic: ordersTopic}
}

// WithObserver installs a callback invoked after every publish attempt.
func (p *KafkaPublisher) WithObserver(fn func(eventType string, err error)) *KafkaPublisher {
	p.observe = fn
	return p
}

func (p *KafkaPublisher) PublishSaleCompleted(ctx context.Context, event SaleCompletedEvent) error {
	return p.publish(ctx, p.salesTopic, "sale_"+strconv.FormatInt(event.SaleID, 10), EventTypeSaleCompleted, event)
}

func (p *KafkaPublisher) PublishSaleStatusChanged(ctx context.Context, event StatusChangedEvent) error {
	return p.publish(ctx, p.salesTopic, "sale_"+strconv.FormatInt(event.ID, 10), EventTypeSaleStatusChanged, event)
}

func (p *KafkaPublisher) PublishOnlineOrderPlaced(ctx context.Context, event OnlineOrderPlacedEvent) error {
	return p.publish(ctx, p.ordersTopic, "order_"+strconv.FormatInt(event.OrderID, 10), EventTypeOnlineOrderPlaced, event)
}

func (p *KafkaPublisher) PublishOnlineOrderStatusChanged(ctx context.Context, event StatusChangedEvent) error {
	return p.publish(ctx, p.ordersTopic, "order_"+strconv.FormatInt(event.ID, 10), EventTypeOnlineOrderUpdated, event)
}

func (p *KafkaPublisher) publish(ctx context.Context, topic, key, eventType string, payload interface{}) (err error) {
	if p.observe != nil {
		defer func() { p.observe(eventType, err) }()
	}

	ctx, span := otel.Tracer("kafka-publisher").Start(ctx, "kafka.publish."+eventType,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", topic),
			attribute.String("event.type", eventType),
		),
	)
	defer span.End()

	envelope := Envelope{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	span.SetAttributes(attribute.String("event.id", envelope.EventID))

	body, err := json.Marshal(envelope)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(eventType)},
		{Key: []byte("event_id"), Value: []byte(envelope.EventID)},
	}
	for k, v := range carrier {
		headers = append(headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(body),
		Headers: headers,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to send message")
		return fmt.Errorf("failed to send %s event: %w", eventType, err)
	}

	span.SetAttributes(
		attribute.Int64("messaging.kafka.partition", int64(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)
	utils.LoggerFromContext(ctx).Debug().
		Str("event_type", eventType).
		Str("topic", topic).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("Event published")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
