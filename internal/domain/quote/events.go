package quote

import (
	"time"

	"github.com/google/uuid"
)

// Kafka topic and CloudEvent types published by the quote service.
const (
	TopicQuoteEvents = "quote.events"

	EventQuoteIssued      = "quote.issued"
	EventLocationSelected = "quote.location_selected"
)

// QuoteIssuedEvent is published after a quote is persisted.
type QuoteIssuedEvent struct {
	QuoteID         uuid.UUID `json:"quote_id"`
	QuoteNumber     string    `json:"quote_number"`
	SessionID       uuid.UUID `json:"session_id"`
	AreaM2          float64   `json:"area_m2"`
	Floors          int       `json:"floors"`
	DestinationLat  *float64  `json:"destination_lat,omitempty"`
	DestinationLng  *float64  `json:"destination_lng,omitempty"`
	DistanceKm      float64   `json:"distance_km"`
	DurationMinutes float64   `json:"duration_minutes"`
	Total           int64     `json:"total"`
	Currency        string    `json:"currency"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// LocationSelectedEvent asks a route worker to fetch the route for one pick.
type LocationSelectedEvent struct {
	SessionID  uuid.UUID `json:"session_id"`
	PickSeq    int64     `json:"pick_seq"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Destination returns the picked location.
func (e LocationSelectedEvent) Destination() Location {
	return Location{Lat: e.Lat, Lng: e.Lng}
}

// NewQuoteIssuedEvent builds the event payload for q.
func NewQuoteIssuedEvent(q *Quote) QuoteIssuedEvent {
	evt := QuoteIssuedEvent{
		QuoteID:         q.ID(),
		QuoteNumber:     q.QuoteNumber(),
		SessionID:       q.SessionID(),
		AreaM2:          q.Property().AreaM2,
		Floors:          q.Property().Floors,
		DistanceKm:      q.DistanceKm(),
		DurationMinutes: q.DurationMinutes(),
		Total:           q.TotalCOP(),
		Currency:        q.Currency(),
		OccurredAt:      time.Now().UTC(),
	}
	if d := q.Destination(); d != nil {
		lat, lng := d.Lat, d.Lng
		evt.DestinationLat = &lat
		evt.DestinationLng = &lng
	}
	return evt
}
