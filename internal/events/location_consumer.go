package events

import (
	"context"

	"github.com/avaluos-co/service-quote/internal/application"
	"github.com/avaluos-co/service-quote/internal/common/kafka"
	quoteDomain "github.com/avaluos-co/service-quote/internal/domain/quote"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// LocationEventConsumer listens to location picks and fetches their routes.
type LocationEventConsumer struct {
	consumer *kafka.Consumer
	fetcher  *application.RouteFetcher
	logger   *zap.Logger
}

// NewLocationEventConsumer creates a new LocationEventConsumer.
func NewLocationEventConsumer(
	brokers []string,
	groupID string,
	fetcher *application.RouteFetcher,
	logger *zap.Logger,
) *LocationEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, quoteDomain.TopicQuoteEvents, logger)
	return &LocationEventConsumer{
		consumer: consumer,
		fetcher:  fetcher,
		logger:   logger,
	}
}

// Start begins consuming quote events. This blocks until the context is cancelled.
func (c *LocationEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *LocationEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *LocationEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from quote topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case quoteDomain.EventLocationSelected:
		return c.handleLocationSelected(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled quote event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *LocationEventConsumer) handleLocationSelected(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt quoteDomain.LocationSelectedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse LocationSelectedEvent data",
			zap.Error(err),
		)
		return nil
	}

	c.logger.Debug("processing location selected event",
		zap.String("session_id", evt.SessionID.String()),
		zap.Int64("pick_seq", evt.PickSeq),
	)

	pick := application.Pick{
		SessionID:   evt.SessionID,
		Seq:         evt.PickSeq,
		Destination: evt.Destination(),
	}
	if err := c.fetcher.Fetch(ctx, pick); err != nil {
		c.logger.Error("failed to store route for location pick",
			zap.String("session_id", evt.SessionID.String()),
			zap.Int64("pick_seq", evt.PickSeq),
			zap.Error(err),
		)
		// Failed messages are skipped, so settle the pick instead of
		// leaving it pending.
		return c.fetcher.MarkFailed(ctx, pick)
	}
	return nil
}
