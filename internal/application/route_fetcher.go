package application

import (
	"context"
	"errors"
	"fmt"

	quoteDomain "github.com/avaluos-co/service-quote/internal/domain/quote"
	"github.com/avaluos-co/service-quote/internal/routing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// errStalePick aborts a session write for a superseded pick.
var errStalePick = errors.New("pick superseded")

// Pick identifies one location selection whose route must be fetched.
type Pick struct {
	SessionID   uuid.UUID
	Seq         int64
	Destination quoteDomain.Location
}

// RouteFetcher fetches the route from the office to a pick and stores it on
// the session. Provider failures are logged and leave the previous route.
type RouteFetcher struct {
	provider routing.Provider
	sessions quoteDomain.SessionRepository
	origin   quoteDomain.Location
	logger   *zap.Logger
}

// NewRouteFetcher creates a new RouteFetcher.
func NewRouteFetcher(
	provider routing.Provider,
	sessions quoteDomain.SessionRepository,
	origin quoteDomain.Location,
	logger *zap.Logger,
) *RouteFetcher {
	return &RouteFetcher{
		provider: provider,
		sessions: sessions,
		origin:   origin,
		logger:   logger,
	}
}

// Origin returns the fixed route origin.
func (f *RouteFetcher) Origin() quoteDomain.Location { return f.origin }

// Fetch requests one route for pick. Only session store failures are returned.
func (f *RouteFetcher) Fetch(ctx context.Context, pick Pick) error {
	route, err := f.provider.Route(ctx, f.origin, pick.Destination)
	if err != nil {
		f.logger.Warn("route fetch failed, keeping previous route",
			zap.String("session_id", pick.SessionID.String()),
			zap.Int64("pick_seq", pick.Seq),
			zap.String("destination", pick.Destination.String()),
			zap.Error(err),
		)
		return f.MarkFailed(ctx, pick)
	}

	_, err = f.sessions.Mutate(ctx, pick.SessionID, func(s *quoteDomain.Session) error {
		applied, err := s.ApplyRoute(pick.Seq, route)
		if err != nil {
			return err
		}
		if !applied {
			return errStalePick
		}
		return nil
	})
	if errors.Is(err, errStalePick) {
		f.logger.Info("discarding route for superseded pick",
			zap.String("session_id", pick.SessionID.String()),
			zap.Int64("pick_seq", pick.Seq),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to store route: %w", err)
	}

	f.logger.Debug("route applied",
		zap.String("session_id", pick.SessionID.String()),
		zap.Int64("pick_seq", pick.Seq),
		zap.Float64("distance_km", route.DistanceKm),
		zap.Float64("duration_minutes", route.DurationMinutes),
	)
	return nil
}

// MarkFailed records that the fetch for pick did not produce a route.
func (f *RouteFetcher) MarkFailed(ctx context.Context, pick Pick) error {
	// Record the failure even when a cancelled ctx caused it.
	ctx = context.WithoutCancel(ctx)

	_, err := f.sessions.Mutate(ctx, pick.SessionID, func(s *quoteDomain.Session) error {
		failed, err := s.FailRoute(pick.Seq)
		if err != nil {
			return err
		}
		if !failed {
			return errStalePick
		}
		return nil
	})
	if err == nil || errors.Is(err, errStalePick) {
		return nil
	}
	return fmt.Errorf("failed to record route failure: %w", err)
}
