// Package events runs the storefront's Kafka consumers.
package events

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/urbandrives/storefront/internal/contract"
	"github.com/urbandrives/storefront/internal/platform/kafka"
)

// PaymentRecorder stores completed payments.
type PaymentRecorder interface {
	RecordPayment(ctx context.Context, evt contract.PaymentSucceededEvent) error
}

// PaymentEventConsumer listens to payment events and records them in the ledger.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	recorder PaymentRecorder
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	recorder PaymentRecorder,
	logger *zap.Logger,
) *PaymentEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, contract.TopicPaymentEvents, logger)
	return &PaymentEventConsumer{
		consumer: consumer,
		recorder: recorder,
		logger:   logger,
	}
}

// Start begins consuming payment events. This blocks until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	return c.handle(ctx, msg.Value)
}

func (c *PaymentEventConsumer) handle(ctx context.Context, value []byte) error {
	cloudEvent, err := kafka.ParseCloudEvent(value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case contract.PaymentSucceeded:
		return c.handlePaymentSucceeded(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handlePaymentSucceeded(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt contract.PaymentSucceededEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse PaymentSucceededEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing payment succeeded event",
		zap.Int64("booking_id", evt.BookingID),
		zap.String("provider_ref", evt.ProviderRef),
	)

	if err := c.recorder.RecordPayment(ctx, evt); err != nil {
		c.logger.Error("failed to record payment",
			zap.Int64("booking_id", evt.BookingID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
