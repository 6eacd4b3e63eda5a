package application

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/avaluos-co/service-quote/internal/common/domain"
	"github.com/avaluos-co/service-quote/internal/common/kafka"
	quoteDomain "github.com/avaluos-co/service-quote/internal/domain/quote"
	"github.com/avaluos-co/service-quote/internal/geocoding"
	"github.com/google/uuid"
)

var testOffice = quoteDomain.Location{Lat: 4.601955010311332, Lng: -74.07203983933485}

type stubProvider struct {
	mu     sync.Mutex
	routes map[quoteDomain.Location]quoteDomain.Route
	err    error
	calls  int
}

func (p *stubProvider) Route(_ context.Context, _, destination quoteDomain.Location) (quoteDomain.Route, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return quoteDomain.Route{}, p.err
	}
	if r, ok := p.routes[destination]; ok {
		return r, nil
	}
	return quoteDomain.Route{}, errors.New("no route stubbed")
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []kafka.CloudEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, _ string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

type stubGeocoder struct {
	places []geocoding.Place
	err    error
}

func (g stubGeocoder) Search(context.Context, string) ([]geocoding.Place, error) {
	if g.err != nil {
		return nil, g.err
	}
	if len(g.places) == 0 {
		return nil, geocoding.ErrNoResults
	}
	return g.places, nil
}

type memoryQuoteRepository struct {
	mu     sync.Mutex
	quotes []*quoteDomain.Quote
}

func (r *memoryQuoteRepository) Save(_ context.Context, q *quoteDomain.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quotes = append(r.quotes, q)
	return nil
}

func (r *memoryQuoteRepository) FindByNumber(_ context.Context, number string) (*quoteDomain.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, q := range r.quotes {
		if q.QuoteNumber() == number {
			return q, nil
		}
	}
	return nil, domain.NewNotFoundError("Quote", number)
}

func (r *memoryQuoteRepository) FindBySessionID(_ context.Context, sessionID uuid.UUID) ([]*quoteDomain.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*quoteDomain.Quote
	for _, q := range r.quotes {
		if q.SessionID() == sessionID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *memoryQuoteRepository) ListAll(_ context.Context, page, limit int) ([]*quoteDomain.Quote, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start := (page - 1) * limit
	if start >= len(r.quotes) {
		return []*quoteDomain.Quote{}, int64(len(r.quotes)), nil
	}
	end := start + limit
	if end > len(r.quotes) {
		end = len(r.quotes)
	}
	return r.quotes[start:end], int64(len(r.quotes)), nil
}

func (r *memoryQuoteRepository) Stats(context.Context) (quoteDomain.QuoteStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := quoteDomain.QuoteStats{ByFloors: map[int]int64{}}
	for _, q := range r.quotes {
		stats.TotalQuotes++
		stats.TotalValue += q.TotalCOP()
		stats.ByFloors[q.Property().Floors]++
	}
	if stats.TotalQuotes > 0 {
		stats.AverageValue = float64(stats.TotalValue) / float64(stats.TotalQuotes)
	}
	return stats, nil
}

func eventTypes(events []kafka.CloudEvent) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	sort.Strings(out)
	return out
}
