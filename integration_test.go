//go:build integration

package main_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/avaluos-co/service-quote/internal/application"
	quoteDomain "github.com/avaluos-co/service-quote/internal/domain/quote"
	"github.com/avaluos-co/service-quote/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

// TestLocationSelected_RouteWorkerPricesQuote verifies that a pick dispatched
// through quote.events is routed by the consumer, and that the resulting quote
// is stored in PostgreSQL and announced as quote.issued.
func TestLocationSelected_RouteWorkerPricesQuote(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupQuoteStack(t, infra)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	session, err := stack.Quotes.CreateSession(ctx, &application.PropertyRequest{AreaM2: ptr(60.0), Floors: ptr(2)})
	require.NoError(t, err)

	picked, err := stack.Picker.SelectLocation(ctx, session.ID, quoteDomain.Location{Lat: 4.65, Lng: -74.05})
	require.NoError(t, err)
	// The worker may already have answered by the time the session is reloaded.
	assert.Contains(t, []string{"pending", "ready"}, picked.RouteStatus)

	ready := waitForRouteStatus(t, stack.Sessions, session.ID, quoteDomain.RouteReady, 20*time.Second)
	assert.Equal(t, 10.0, ready.Route().DistanceKm)

	issued, err := stack.Quotes.IssueQuote(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(550000), issued.Estimate.Total)

	var model repository.QuoteModel
	require.NoError(t, infra.DB.Where("quote_number = ?", issued.QuoteNumber).First(&model).Error)
	assert.Equal(t, int64(550000), model.TotalCOP)
	assert.Equal(t, 2, model.Floors)

	ce := consumeOneEvent(t, infra.KafkaBrokers, quoteDomain.TopicQuoteEvents,
		quoteDomain.EventQuoteIssued, 15*time.Second)
	var evt quoteDomain.QuoteIssuedEvent
	require.NoError(t, ce.ParseData(&evt))
	assert.Equal(t, issued.QuoteNumber, evt.QuoteNumber)
	assert.Equal(t, int64(550000), evt.Total)

	stats, err := stack.Quotes.GetQuoteStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalQuotes)
	assert.Equal(t, int64(1), stats.ByFloors["2"])
}

// TestRedisSessionRepository_ConcurrentPicks verifies that concurrent picks on
// one session are serialized by the optimistic transaction.
func TestRedisSessionRepository_ConcurrentPicks(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	ctx := context.Background()
	sessions := repository.NewRedisSessionRepository(infra.Redis, time.Hour)

	s, err := quoteDomain.NewSession(quoteDomain.DefaultPropertySpecification())
	require.NoError(t, err)
	require.NoError(t, sessions.Create(ctx, s))

	const pickers = 4
	var wg sync.WaitGroup
	errs := make(chan error, pickers)
	for i := 0; i < pickers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			loc := quoteDomain.Location{Lat: 4.6 + float64(i)*0.01, Lng: -74.05}
			_, err := sessions.Mutate(ctx, s.ID(), func(sess *quoteDomain.Session) error {
				_, err := sess.SelectLocation(loc)
				return err
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := sessions.FindByID(ctx, s.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(pickers), got.PickSeq())
	assert.Equal(t, quoteDomain.RoutePending, got.RouteStatus())
}
