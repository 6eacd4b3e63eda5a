package application

import (
	"context"
	"time"

	quoteDomain "github.com/avaluos-co/service-quote/internal/domain/quote"
	"go.uber.org/zap"
)

// RouteDispatcher hands a pick over to the route fetcher.
type RouteDispatcher interface {
	Dispatch(ctx context.Context, pick Pick) error
}

// InlineDispatcher fetches the route before returning.
type InlineDispatcher struct {
	fetcher *RouteFetcher
}

// NewInlineDispatcher creates a new InlineDispatcher.
func NewInlineDispatcher(fetcher *RouteFetcher) *InlineDispatcher {
	return &InlineDispatcher{fetcher: fetcher}
}

// Dispatch runs the fetch synchronously.
func (d *InlineDispatcher) Dispatch(ctx context.Context, pick Pick) error {
	return d.fetcher.Fetch(ctx, pick)
}

// KafkaDispatcher publishes a location-selected event for a route worker.
type KafkaDispatcher struct {
	publisher EventPublisher
	logger    *zap.Logger
}

// NewKafkaDispatcher creates a new KafkaDispatcher.
func NewKafkaDispatcher(publisher EventPublisher, logger *zap.Logger) *KafkaDispatcher {
	return &KafkaDispatcher{publisher: publisher, logger: logger}
}

// Dispatch publishes the pick keyed by session so picks of one session stay ordered.
func (d *KafkaDispatcher) Dispatch(ctx context.Context, pick Pick) error {
	evt := quoteDomain.LocationSelectedEvent{
		SessionID:  pick.SessionID,
		PickSeq:    pick.Seq,
		Lat:        pick.Destination.Lat,
		Lng:        pick.Destination.Lng,
		OccurredAt: time.Now().UTC(),
	}
	return publishEvent(ctx, d.publisher, d.logger,
		quoteDomain.TopicQuoteEvents, quoteDomain.EventLocationSelected, pick.SessionID.String(), evt)
}
