package application

import (
	"context"
	"fmt"
	"math"

	"github.com/avaluos-co/service-quote/internal/common/domain"
	quoteDomain "github.com/avaluos-co/service-quote/internal/domain/quote"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EstimateRequest holds the inputs of a stateless price estimate.
type EstimateRequest struct {
	AreaM2     float64 `form:"area_m2" json:"area_m2" binding:"required"`
	Floors     int     `form:"floors" json:"floors" binding:"required"`
	DistanceKm float64 `form:"distance_km" json:"distance_km"`
}

// PropertyRequest sets the property of a session. Omitted fields keep their value.
type PropertyRequest struct {
	AreaM2 *float64 `json:"area_m2"`
	Floors *int     `json:"floors"`
}

// QuoteStatsDTO holds quote ledger statistics for the admin dashboard.
type QuoteStatsDTO struct {
	TotalQuotes       int64            `json:"total_quotes"`
	TotalValue        int64            `json:"total_value"`
	TotalValueLabel   string           `json:"total_value_label"`
	AverageValue      int64            `json:"average_value"`
	AverageValueLabel string           `json:"average_value_label"`
	ByFloors          map[string]int64 `json:"by_floors"`
}

// QuoteService is the application service orchestrating pricing, sessions and quotes.
type QuoteService struct {
	sessions  quoteDomain.SessionRepository
	quotes    quoteDomain.QuoteRepository
	pricing   quoteDomain.PricingStrategy
	publisher EventPublisher
	logger    *zap.Logger
}

// NewQuoteService creates a new QuoteService.
func NewQuoteService(
	sessions quoteDomain.SessionRepository,
	quotes quoteDomain.QuoteRepository,
	pricing quoteDomain.PricingStrategy,
	publisher EventPublisher,
	logger *zap.Logger,
) *QuoteService {
	return &QuoteService{
		sessions:  sessions,
		quotes:    quotes,
		pricing:   pricing,
		publisher: publisher,
		logger:    logger,
	}
}

// Estimate prices a property without a session.
func (s *QuoteService) Estimate(req EstimateRequest) (*EstimateDTO, error) {
	property := quoteDomain.PropertySpecification{AreaM2: req.AreaM2, Floors: req.Floors}
	if err := property.Validate(); err != nil {
		return nil, err
	}
	if err := quoteDomain.ValidateDistance(req.DistanceKm); err != nil {
		return nil, err
	}

	params := property.PricingParams(req.DistanceKm)
	est := s.pricing.Calculate(params)
	if math.IsNaN(est.Total) || math.IsInf(est.Total, 0) {
		return nil, domain.NewValidationError("estimate is out of range")
	}
	result := toEstimateDTO(params, est)
	return &result, nil
}

// CreateSession starts a quoting session. Nil property uses the defaults.
func (s *QuoteService) CreateSession(ctx context.Context, req *PropertyRequest) (*SessionDTO, error) {
	property := applyPropertyRequest(quoteDomain.DefaultPropertySpecification(), req)

	session, err := quoteDomain.NewSession(property)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	result := toSessionDTO(session, s.pricing)
	return &result, nil
}

// GetSession retrieves a session with its current estimate.
func (s *QuoteService) GetSession(ctx context.Context, sessionID uuid.UUID) (*SessionDTO, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	result := toSessionDTO(session, s.pricing)
	return &result, nil
}

// UpdateProperty changes area and/or floors and re-prices the session.
func (s *QuoteService) UpdateProperty(ctx context.Context, sessionID uuid.UUID, req PropertyRequest) (*SessionDTO, error) {
	session, err := s.sessions.Mutate(ctx, sessionID, func(sess *quoteDomain.Session) error {
		return sess.UpdateProperty(applyPropertyRequest(sess.Property(), &req))
	})
	if err != nil {
		return nil, err
	}
	result := toSessionDTO(session, s.pricing)
	return &result, nil
}

// IssueQuote freezes the session's estimate into a persisted quote.
func (s *QuoteService) IssueQuote(ctx context.Context, sessionID uuid.UUID) (*QuoteDTO, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	q, err := quoteDomain.IssueQuote(session, s.pricing)
	if err != nil {
		return nil, err
	}

	if err := s.quotes.Save(ctx, q); err != nil {
		return nil, fmt.Errorf("failed to save quote: %w", err)
	}

	s.logger.Info("quote issued",
		zap.String("quote_number", q.QuoteNumber()),
		zap.String("session_id", sessionID.String()),
		zap.Int64("total", q.TotalCOP()),
	)

	if s.publisher != nil {
		_ = publishEvent(ctx, s.publisher, s.logger,
			quoteDomain.TopicQuoteEvents, quoteDomain.EventQuoteIssued, q.ID().String(), quoteDomain.NewQuoteIssuedEvent(q))
	}

	result := toQuoteDTO(q)
	return &result, nil
}

// GetQuote retrieves a quote by its number.
func (s *QuoteService) GetQuote(ctx context.Context, number string) (*QuoteDTO, error) {
	q, err := s.quotes.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	result := toQuoteDTO(q)
	return &result, nil
}

// GetSessionQuotes lists the quotes issued from a session.
func (s *QuoteService) GetSessionQuotes(ctx context.Context, sessionID uuid.UUID) ([]QuoteDTO, error) {
	quotes, err := s.quotes.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	dtos := make([]QuoteDTO, len(quotes))
	for i, q := range quotes {
		dtos[i] = toQuoteDTO(q)
	}
	return dtos, nil
}

// --- Admin methods ---

// ListAllQuotes returns a paginated list of all quotes (admin).
func (s *QuoteService) ListAllQuotes(ctx context.Context, page, limit int) ([]QuoteDTO, int64, error) {
	quotes, total, err := s.quotes.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list quotes: %w", err)
	}

	dtos := make([]QuoteDTO, len(quotes))
	for i, q := range quotes {
		dtos[i] = toQuoteDTO(q)
	}
	return dtos, total, nil
}

// GetQuoteStats returns aggregate quote statistics (admin).
func (s *QuoteService) GetQuoteStats(ctx context.Context) (*QuoteStatsDTO, error) {
	stats, err := s.quotes.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote stats: %w", err)
	}

	byFloors := make(map[string]int64, len(stats.ByFloors))
	for floors, count := range stats.ByFloors {
		byFloors[fmt.Sprintf("%d", floors)] = count
	}
	avg := quoteDomain.RoundCOP(stats.AverageValue)

	return &QuoteStatsDTO{
		TotalQuotes:       stats.TotalQuotes,
		TotalValue:        stats.TotalValue,
		TotalValueLabel:   quoteDomain.FormatCOP(stats.TotalValue),
		AverageValue:      avg,
		AverageValueLabel: quoteDomain.FormatCOP(avg),
		ByFloors:          byFloors,
	}, nil
}

// --- Helpers ---

func applyPropertyRequest(base quoteDomain.PropertySpecification, req *PropertyRequest) quoteDomain.PropertySpecification {
	if req == nil {
		return base
	}
	if req.AreaM2 != nil {
		base.AreaM2 = *req.AreaM2
	}
	if req.Floors != nil {
		base.Floors = *req.Floors
	}
	return base
}
