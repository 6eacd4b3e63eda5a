package quote

import (
	"context"

	"github.com/google/uuid"
)

// SessionRepository defines the storage contract for picker sessions.
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// FindByID retrieves a session by its identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Session, error)

	// Mutate loads the session, applies fn and stores the result atomically.
	// When fn returns an error nothing is stored.
	Mutate(ctx context.Context, id uuid.UUID, fn func(*Session) error) (*Session, error)
}

// QuoteStats are aggregate figures over the quote ledger.
type QuoteStats struct {
	TotalQuotes  int64         `json:"total_quotes"`
	TotalValue   int64         `json:"total_value"`
	AverageValue float64       `json:"average_value"`
	ByFloors     map[int]int64 `json:"by_floors"`
}

// QuoteRepository defines the persistence contract for issued quotes.
type QuoteRepository interface {
	// Save persists a new quote.
	Save(ctx context.Context, q *Quote) error

	// FindByNumber retrieves a quote by its quote number.
	FindByNumber(ctx context.Context, number string) (*Quote, error)

	// FindBySessionID lists quotes issued from one session, newest first.
	FindBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*Quote, error)

	// ListAll retrieves all quotes with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Quote, int64, error)

	// Stats returns aggregate ledger figures (admin).
	Stats(ctx context.Context) (QuoteStats, error)
}
