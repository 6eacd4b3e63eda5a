package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avaluos-co/service-quote/internal/common/domain"
	quoteDomain "github.com/avaluos-co/service-quote/internal/domain/quote"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuoteModel is the GORM model for the quotes table.
type QuoteModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	QuoteNumber     string          `gorm:"uniqueIndex;not null;size:20"`
	SessionID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	AreaM2          float64         `gorm:"not null"`
	Floors          int             `gorm:"not null;index"`
	Destination     json.RawMessage `gorm:"type:jsonb"`
	DistanceKm      float64         `gorm:"not null;default:0"`
	DurationMinutes float64         `gorm:"not null;default:0"`
	Estimate        json.RawMessage `gorm:"type:jsonb;not null"`
	TotalCOP        int64           `gorm:"column:total_cop;not null"`
	Currency        string          `gorm:"not null;size:3;default:'COP'"`
	CreatedAt       time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for the GORM model.
func (QuoteModel) TableName() string {
	return "quotes"
}

// GormQuoteRepository is the GORM-based implementation of QuoteRepository.
type GormQuoteRepository struct {
	db *gorm.DB
}

// NewGormQuoteRepository creates a new GormQuoteRepository.
func NewGormQuoteRepository(db *gorm.DB) *GormQuoteRepository {
	return &GormQuoteRepository{db: db}
}

// Save persists a new quote.
func (r *GormQuoteRepository) Save(ctx context.Context, q *quoteDomain.Quote) error {
	model, err := toQuoteModel(q)
	if err != nil {
		return fmt.Errorf("failed to convert quote to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("quote number already issued")
		}
		return fmt.Errorf("failed to save quote: %w", err)
	}
	return nil
}

// FindByNumber retrieves a quote by its quote number.
func (r *GormQuoteRepository) FindByNumber(ctx context.Context, number string) (*quoteDomain.Quote, error) {
	var model QuoteModel
	if err := r.db.WithContext(ctx).Where("quote_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Quote", number)
		}
		return nil, fmt.Errorf("failed to find quote by number: %w", err)
	}
	return toDomainQuote(&model)
}

// FindBySessionID retrieves every quote issued from a session.
func (r *GormQuoteRepository) FindBySessionID(ctx context.Context, sessionID uuid.UUID) ([]*quoteDomain.Quote, error) {
	var models []QuoteModel
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find session quotes: %w", err)
	}
	return toDomainQuotes(models)
}

// ListAll retrieves all quotes with pagination (admin).
func (r *GormQuoteRepository) ListAll(ctx context.Context, page, limit int) ([]*quoteDomain.Quote, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&QuoteModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count quotes: %w", err)
	}

	var models []QuoteModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list quotes: %w", err)
	}

	quotes, err := toDomainQuotes(models)
	if err != nil {
		return nil, 0, err
	}
	return quotes, total, nil
}

// Stats returns ledger totals and counts grouped by floors (admin).
func (r *GormQuoteRepository) Stats(ctx context.Context) (quoteDomain.QuoteStats, error) {
	type floorsCount struct {
		Floors int
		Count  int64
		Value  int64
	}
	var results []floorsCount
	if err := r.db.WithContext(ctx).Model(&QuoteModel{}).
		Select("floors, count(*) as count, coalesce(sum(total_cop), 0) as value").
		Group("floors").
		Find(&results).Error; err != nil {
		return quoteDomain.QuoteStats{}, fmt.Errorf("failed to aggregate quotes: %w", err)
	}

	stats := quoteDomain.QuoteStats{ByFloors: make(map[int]int64)}
	for _, fc := range results {
		stats.ByFloors[fc.Floors] = fc.Count
		stats.TotalQuotes += fc.Count
		stats.TotalValue += fc.Value
	}
	if stats.TotalQuotes > 0 {
		stats.AverageValue = float64(stats.TotalValue) / float64(stats.TotalQuotes)
	}
	return stats, nil
}

// --- Conversion Helpers ---

func toQuoteModel(q *quoteDomain.Quote) (*QuoteModel, error) {
	estimateJSON, err := json.Marshal(q.Estimate())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal estimate: %w", err)
	}

	var destinationJSON json.RawMessage
	if q.Destination() != nil {
		data, err := json.Marshal(q.Destination())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal destination: %w", err)
		}
		destinationJSON = data
	}

	return &QuoteModel{
		ID:              q.ID(),
		QuoteNumber:     q.QuoteNumber(),
		SessionID:       q.SessionID(),
		AreaM2:          q.Property().AreaM2,
		Floors:          q.Property().Floors,
		Destination:     destinationJSON,
		DistanceKm:      q.DistanceKm(),
		DurationMinutes: q.DurationMinutes(),
		Estimate:        estimateJSON,
		TotalCOP:        q.TotalCOP(),
		Currency:        q.Currency(),
		CreatedAt:       q.CreatedAt(),
	}, nil
}

func toDomainQuote(m *QuoteModel) (*quoteDomain.Quote, error) {
	var estimate quoteDomain.Estimate
	if err := json.Unmarshal(m.Estimate, &estimate); err != nil {
		return nil, fmt.Errorf("failed to unmarshal estimate: %w", err)
	}

	var destination *quoteDomain.Location
	if len(m.Destination) > 0 && string(m.Destination) != "null" {
		var loc quoteDomain.Location
		if err := json.Unmarshal(m.Destination, &loc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal destination: %w", err)
		}
		destination = &loc
	}

	return quoteDomain.ReconstructQuote(
		m.ID,
		m.QuoteNumber,
		m.SessionID,
		quoteDomain.PropertySpecification{AreaM2: m.AreaM2, Floors: m.Floors},
		destination,
		m.DistanceKm,
		m.DurationMinutes,
		estimate,
		m.TotalCOP,
		m.Currency,
		m.CreatedAt,
	), nil
}

func toDomainQuotes(models []QuoteModel) ([]*quoteDomain.Quote, error) {
	quotes := make([]*quoteDomain.Quote, len(models))
	for i := range models {
		q, err := toDomainQuote(&models[i])
		if err != nil {
			return nil, err
		}
		quotes[i] = q
	}
	return quotes, nil
}
