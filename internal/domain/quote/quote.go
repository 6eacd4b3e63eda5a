package quote

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/avaluos-co/service-quote/internal/common/domain"
	"github.com/google/uuid"
)

const quoteNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Quote is an issued, immutable price quote kept in the quote ledger.
type Quote struct {
	id              uuid.UUID
	quoteNumber     string
	sessionID       uuid.UUID
	property        PropertySpecification
	destination     *Location
	distanceKm      float64
	durationMinutes float64
	estimate        Estimate
	totalCOP        int64
	currency        string
	createdAt       time.Time
}

// generateQuoteNumber creates a quote number in the format "AV-XXXXXX".
func generateQuoteNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(quoteNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate quote number: %w", err)
		}
		result[i] = quoteNumberChars[n.Int64()]
	}
	return "AV-" + string(result), nil
}

// IssueQuote freezes the session's current estimate into a Quote. A session
// whose route is still being fetched cannot be quoted, nor can one whose
// latest pick failed to route, since its distance belongs to another location.
func IssueQuote(s *Session, strategy PricingStrategy) (*Quote, error) {
	if !s.RouteStatus().IsSettled() {
		return nil, domain.NewInvalidStateError(string(RoutePending), "quoted")
	}
	if s.HasSelection() && s.RouteStatus() == RouteFailed {
		return nil, domain.NewInvalidStateError(string(RouteFailed), "quoted")
	}
	if err := s.Property().Validate(); err != nil {
		return nil, err
	}

	estimate := s.Estimate(strategy)
	total := estimate.TotalCOP()
	if total <= 0 {
		return nil, domain.NewValidationError("quote total must be positive")
	}

	number, err := generateQuoteNumber()
	if err != nil {
		return nil, err
	}

	var destination *Location
	if sel := s.Selection(); sel != nil {
		d := *sel
		destination = &d
	}

	route := s.Route()
	return &Quote{
		id:              uuid.New(),
		quoteNumber:     number,
		sessionID:       s.ID(),
		property:        s.Property(),
		destination:     destination,
		distanceKm:      route.DistanceKm,
		durationMinutes: route.DurationMinutes,
		estimate:        estimate,
		totalCOP:        total,
		currency:        domain.CurrencyCOP,
		createdAt:       time.Now().UTC(),
	}, nil
}

// ReconstructQuote rebuilds a Quote from persistence data (no validation).
func ReconstructQuote(
	id uuid.UUID,
	quoteNumber string,
	sessionID uuid.UUID,
	property PropertySpecification,
	destination *Location,
	distanceKm float64,
	durationMinutes float64,
	estimate Estimate,
	totalCOP int64,
	currency string,
	createdAt time.Time,
) *Quote {
	return &Quote{
		id:              id,
		quoteNumber:     quoteNumber,
		sessionID:       sessionID,
		property:        property,
		destination:     destination,
		distanceKm:      distanceKm,
		durationMinutes: durationMinutes,
		estimate:        estimate,
		totalCOP:        totalCOP,
		currency:        currency,
		createdAt:       createdAt,
	}
}

// ID returns the quote's unique identifier.
func (q *Quote) ID() uuid.UUID { return q.id }

// QuoteNumber returns the human-readable quote number.
func (q *Quote) QuoteNumber() string { return q.quoteNumber }

// SessionID returns the session the quote was issued from.
func (q *Quote) SessionID() uuid.UUID { return q.sessionID }

// Property returns the quoted property.
func (q *Quote) Property() PropertySpecification { return q.property }

// Destination returns the property location, or nil when none was picked.
func (q *Quote) Destination() *Location { return q.destination }

// DistanceKm returns the driving distance used for the travel cost.
func (q *Quote) DistanceKm() float64 { return q.distanceKm }

// DurationMinutes returns the estimated driving time.
func (q *Quote) DurationMinutes() float64 { return q.durationMinutes }

// Estimate returns the price breakdown.
func (q *Quote) Estimate() Estimate { return q.estimate }

// TotalCOP returns the quoted total in whole pesos.
func (q *Quote) TotalCOP() int64 { return q.totalCOP }

// Currency returns the currency code.
func (q *Quote) Currency() string { return q.currency }

// CreatedAt returns the issue timestamp.
func (q *Quote) CreatedAt() time.Time { return q.createdAt }
