package application

import (
	"context"
	"testing"
	"time"

	"github.com/avaluos-co/service-quote/internal/common/domain"
	quoteDomain "github.com/avaluos-co/service-quote/internal/domain/quote"
	"github.com/avaluos-co/service-quote/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type quoteFixture struct {
	sessions  *repository.MemorySessionRepository
	quotes    *memoryQuoteRepository
	publisher *recordingPublisher
	service   *QuoteService
}

func newQuoteFixture() quoteFixture {
	f := quoteFixture{
		sessions:  repository.NewMemorySessionRepository(time.Hour),
		quotes:    &memoryQuoteRepository{},
		publisher: &recordingPublisher{},
	}
	f.service = NewQuoteService(f.sessions, f.quotes, quoteDomain.NewStandardPricingStrategy(), f.publisher, zap.NewNop())
	return f
}

func ptr[T any](v T) *T { return &v }

func TestQuoteService_Estimate(t *testing.T) {
	f := newQuoteFixture()

	est, err := f.service.Estimate(EstimateRequest{AreaM2: 60, Floors: 2, DistanceKm: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(550000), est.Total)
	assert.Equal(t, "$550.000", est.TotalLabel)
	assert.Equal(t, "COP", est.Currency)
}

func TestQuoteService_EstimateValidation(t *testing.T) {
	f := newQuoteFixture()

	_, err := f.service.Estimate(EstimateRequest{AreaM2: -1, Floors: 1})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = f.service.Estimate(EstimateRequest{AreaM2: 50, Floors: 0})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = f.service.Estimate(EstimateRequest{AreaM2: 50, Floors: 1, DistanceKm: -3})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestQuoteService_CreateSessionDefaults(t *testing.T) {
	f := newQuoteFixture()

	s, err := f.service.CreateSession(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 20.0, s.Property.AreaM2)
	assert.Equal(t, 1, s.Property.Floors)
	assert.Equal(t, "idle", s.RouteStatus)
	assert.Equal(t, int64(100000), s.Estimate.Total)
	assert.NotNil(t, s.Route.Path)
}

func TestQuoteService_UpdatePropertyRepricesSession(t *testing.T) {
	f := newQuoteFixture()
	s, err := f.service.CreateSession(context.Background(), nil)
	require.NoError(t, err)

	updated, err := f.service.UpdateProperty(context.Background(), s.ID, PropertyRequest{AreaM2: ptr(60.0)})
	require.NoError(t, err)
	assert.Equal(t, 60.0, updated.Property.AreaM2)
	assert.Equal(t, 1, updated.Property.Floors)
	assert.Equal(t, int64(200000), updated.Estimate.Total)

	_, err = f.service.UpdateProperty(context.Background(), s.ID, PropertyRequest{Floors: ptr(0)})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = f.service.UpdateProperty(context.Background(), uuid.New(), PropertyRequest{Floors: ptr(2)})
	assert.True(t, domain.IsNotFound(err))
}

func TestQuoteService_IssueQuote(t *testing.T) {
	f := newQuoteFixture()
	s, err := f.service.CreateSession(context.Background(), &PropertyRequest{AreaM2: ptr(60.0), Floors: ptr(2)})
	require.NoError(t, err)

	dest := quoteDomain.Location{Lat: 4.65, Lng: -74.05}
	_, err = f.sessions.Mutate(context.Background(), s.ID, func(sess *quoteDomain.Session) error {
		seq, err := sess.SelectLocation(dest)
		if err != nil {
			return err
		}
		_, err = sess.ApplyRoute(seq, quoteDomain.Route{DistanceKm: 10, DurationMinutes: 22})
		return err
	})
	require.NoError(t, err)

	q, err := f.service.IssueQuote(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(550000), q.Estimate.Total)
	assert.Equal(t, "$550.000", q.Estimate.TotalLabel)
	assert.Equal(t, dest, *q.Destination)

	assert.Equal(t, []string{quoteDomain.EventQuoteIssued}, eventTypes(f.publisher.events))
	assert.Equal(t, q.ID.String(), f.publisher.events[0].Subject)

	found, err := f.service.GetQuote(context.Background(), q.QuoteNumber)
	require.NoError(t, err)
	assert.Equal(t, q.ID, found.ID)

	bySession, err := f.service.GetSessionQuotes(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Len(t, bySession, 1)
}

func TestQuoteService_IssueQuoteWhileRoutePending(t *testing.T) {
	f := newQuoteFixture()
	s, err := f.service.CreateSession(context.Background(), nil)
	require.NoError(t, err)

	_, err = f.sessions.Mutate(context.Background(), s.ID, func(sess *quoteDomain.Session) error {
		_, err := sess.SelectLocation(quoteDomain.Location{Lat: 4.65, Lng: -74.05})
		return err
	})
	require.NoError(t, err)

	_, err = f.service.IssueQuote(context.Background(), s.ID)
	assert.Equal(t, domain.KindInvalidState, domain.KindOf(err))
	assert.Empty(t, f.quotes.quotes)
}

func TestQuoteService_PublishFailureDoesNotFailIssue(t *testing.T) {
	f := newQuoteFixture()
	f.publisher.err = assert.AnError
	s, err := f.service.CreateSession(context.Background(), nil)
	require.NoError(t, err)

	_, err = f.service.IssueQuote(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Len(t, f.quotes.quotes, 1)
}

func TestQuoteService_AdminStats(t *testing.T) {
	f := newQuoteFixture()
	for _, floors := range []int{1, 2, 2} {
		s, err := f.service.CreateSession(context.Background(), &PropertyRequest{Floors: ptr(floors)})
		require.NoError(t, err)
		_, err = f.service.IssueQuote(context.Background(), s.ID)
		require.NoError(t, err)
	}

	list, total, err := f.service.ListAllQuotes(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, int64(3), total)

	stats, err := f.service.GetQuoteStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalQuotes)
	assert.Equal(t, int64(500000), stats.TotalValue)
	assert.Equal(t, "$500.000", stats.TotalValueLabel)
	assert.Equal(t, int64(2), stats.ByFloors["2"])
}
