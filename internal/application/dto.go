package application

import (
	"time"

	"github.com/avaluos-co/service-quote/internal/common/domain"
	quoteDomain "github.com/avaluos-co/service-quote/internal/domain/quote"
	"github.com/google/uuid"
)

// EstimateDTO is the price breakdown shown to the client.
type EstimateDTO struct {
	AreaM2      float64 `json:"area_m2"`
	Floors      int     `json:"floors"`
	DistanceKm  float64 `json:"distance_km"`
	BasePrice   float64 `json:"base_price"`
	FloorsPrice float64 `json:"floors_price"`
	TravelCost  float64 `json:"travel_cost"`
	Total       int64   `json:"total"`
	TotalLabel  string  `json:"total_label"`
	Currency    string  `json:"currency"`
}

// RouteDTO is the route overlay of a session.
type RouteDTO struct {
	DistanceKm      float64                `json:"distance_km"`
	DurationMinutes float64                `json:"duration_minutes"`
	DurationLabel   string                 `json:"duration_label,omitempty"`
	Path            []quoteDomain.Location `json:"path"`
}

// SessionDTO is the response representation of a picker session.
type SessionDTO struct {
	ID          uuid.UUID                         `json:"id"`
	Property    quoteDomain.PropertySpecification `json:"property"`
	Selection   *quoteDomain.Location             `json:"selection,omitempty"`
	Route       RouteDTO                          `json:"route"`
	RouteStatus string                            `json:"route_status"`
	PickSeq     int64                             `json:"pick_seq"`
	Estimate    EstimateDTO                       `json:"estimate"`
	Version     int64                             `json:"version"`
	CreatedAt   time.Time                         `json:"created_at"`
	UpdatedAt   time.Time                         `json:"updated_at"`
}

// QuoteDTO is the response representation of an issued quote.
type QuoteDTO struct {
	ID              uuid.UUID             `json:"id"`
	QuoteNumber     string                `json:"quote_number"`
	SessionID       uuid.UUID             `json:"session_id"`
	Destination     *quoteDomain.Location `json:"destination,omitempty"`
	DurationMinutes float64               `json:"duration_minutes"`
	Estimate        EstimateDTO           `json:"estimate"`
	CreatedAt       time.Time             `json:"created_at"`
}

func toEstimateDTO(params quoteDomain.PricingParams, est quoteDomain.Estimate) EstimateDTO {
	total := est.TotalCOP()
	return EstimateDTO{
		AreaM2:      params.AreaM2,
		Floors:      params.Floors,
		DistanceKm:  params.DistanceKm,
		BasePrice:   est.BasePrice,
		FloorsPrice: est.FloorsPrice,
		TravelCost:  est.TravelCost,
		Total:       total,
		TotalLabel:  quoteDomain.FormatCOP(total),
		Currency:    domain.CurrencyCOP,
	}
}

func toRouteDTO(r quoteDomain.Route) RouteDTO {
	path := r.Path
	if path == nil {
		path = []quoteDomain.Location{}
	}
	return RouteDTO{
		DistanceKm:      r.DistanceKm,
		DurationMinutes: r.DurationMinutes,
		DurationLabel:   r.DurationLabel(),
		Path:            path,
	}
}

func toSessionDTO(s *quoteDomain.Session, pricing quoteDomain.PricingStrategy) SessionDTO {
	params := s.Property().PricingParams(s.Route().DistanceKm)
	return SessionDTO{
		ID:          s.ID(),
		Property:    s.Property(),
		Selection:   s.Selection(),
		Route:       toRouteDTO(s.Route()),
		RouteStatus: s.RouteStatus().String(),
		PickSeq:     s.PickSeq(),
		Estimate:    toEstimateDTO(params, s.Estimate(pricing)),
		Version:     s.Version(),
		CreatedAt:   s.CreatedAt(),
		UpdatedAt:   s.UpdatedAt(),
	}
}

func toQuoteDTO(q *quoteDomain.Quote) QuoteDTO {
	params := q.Property().PricingParams(q.DistanceKm())
	est := toEstimateDTO(params, q.Estimate())
	est.Total = q.TotalCOP()
	est.TotalLabel = quoteDomain.FormatCOP(q.TotalCOP())
	est.Currency = q.Currency()
	return QuoteDTO{
		ID:              q.ID(),
		QuoteNumber:     q.QuoteNumber(),
		SessionID:       q.SessionID(),
		Destination:     q.Destination(),
		DurationMinutes: q.DurationMinutes(),
		Estimate:        est,
		CreatedAt:       q.CreatedAt(),
	}
}
