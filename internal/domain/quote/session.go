package quote

import (
	"time"

	"github.com/avaluos-co/service-quote/internal/common/domain"
	"github.com/google/uuid"
)

// Session is the aggregate root for one quoting UI: the property being priced,
// the location picked on the map, and the route last fetched for it.
type Session struct {
	id          uuid.UUID
	property    PropertySpecification
	selection   *Location
	route       Route
	routeStatus RouteStatus
	pickSeq     int64

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewSession creates a Session with no selection and a zero route.
func NewSession(property PropertySpecification) (*Session, error) {
	if err := property.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Session{
		id:          uuid.New(),
		property:    property,
		routeStatus: RouteIdle,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// SessionSnapshot is the persisted form of a Session.
type SessionSnapshot struct {
	ID          uuid.UUID             `json:"id"`
	Property    PropertySpecification `json:"property"`
	Selection   *Location             `json:"selection,omitempty"`
	Route       Route                 `json:"route"`
	RouteStatus RouteStatus           `json:"route_status"`
	PickSeq     int64                 `json:"pick_seq"`
	Version     int64                 `json:"version"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// ReconstructSession rebuilds a Session from persistence data (no validation).
func ReconstructSession(s SessionSnapshot) *Session {
	return &Session{
		id:          s.ID,
		property:    s.Property,
		selection:   s.Selection,
		route:       s.Route,
		routeStatus: s.RouteStatus,
		pickSeq:     s.PickSeq,
		version:     s.Version,
		createdAt:   s.CreatedAt,
		updatedAt:   s.UpdatedAt,
	}
}

// Snapshot returns the persisted form of the session.
func (s *Session) Snapshot() SessionSnapshot {
	return SessionSnapshot{
		ID:          s.id,
		Property:    s.property,
		Selection:   s.selection,
		Route:       s.route,
		RouteStatus: s.routeStatus,
		PickSeq:     s.pickSeq,
		Version:     s.version,
		CreatedAt:   s.createdAt,
		UpdatedAt:   s.updatedAt,
	}
}

// --- Getters ---

// ID returns the session's unique identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// Property returns the property being priced.
func (s *Session) Property() PropertySpecification { return s.property }

// Selection returns the picked location, or nil if nothing was picked yet.
func (s *Session) Selection() *Location { return s.selection }

// HasSelection reports whether a location has been picked.
func (s *Session) HasSelection() bool { return s.selection != nil }

// Route returns the last successfully fetched route.
func (s *Session) Route() Route { return s.route }

// RouteStatus returns the state of the latest route fetch.
func (s *Session) RouteStatus() RouteStatus { return s.routeStatus }

// PickSeq returns the sequence number of the latest pick.
func (s *Session) PickSeq() int64 { return s.pickSeq }

// Version returns the entity version.
func (s *Session) Version() int64 { return s.version }

// CreatedAt returns the creation timestamp.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (s *Session) UpdatedAt() time.Time { return s.updatedAt }

// --- Behavior ---

// UpdateProperty replaces the property specification.
func (s *Session) UpdateProperty(property PropertySpecification) error {
	if err := property.Validate(); err != nil {
		return err
	}
	s.property = property
	s.touch()
	return nil
}

// SelectLocation places or moves the selection marker and starts a new route
// fetch. The returned sequence number identifies this pick.
func (s *Session) SelectLocation(loc Location) (int64, error) {
	if err := loc.Validate(); err != nil {
		return 0, err
	}
	if !s.routeStatus.CanTransitionTo(RoutePending) {
		return 0, domain.NewInvalidStateError(string(s.routeStatus), string(RoutePending))
	}

	picked := loc
	s.selection = &picked
	s.pickSeq++
	s.routeStatus = RoutePending
	s.touch()
	return s.pickSeq, nil
}

// IsCurrentPick reports whether seq is still the latest pick.
func (s *Session) IsCurrentPick(seq int64) bool {
	return seq == s.pickSeq
}

// ApplyRoute replaces the route with the result of fetch seq. Results for an
// older pick are ignored and reported as not applied.
func (s *Session) ApplyRoute(seq int64, route Route) (bool, error) {
	if !s.IsCurrentPick(seq) {
		return false, nil
	}
	if !s.routeStatus.CanTransitionTo(RouteReady) {
		return false, domain.NewInvalidStateError(string(s.routeStatus), string(RouteReady))
	}

	s.route = route
	s.routeStatus = RouteReady
	s.touch()
	return true, nil
}

// FailRoute records that fetch seq failed. The previous route is kept.
func (s *Session) FailRoute(seq int64) (bool, error) {
	if !s.IsCurrentPick(seq) {
		return false, nil
	}
	if !s.routeStatus.CanTransitionTo(RouteFailed) {
		return false, domain.NewInvalidStateError(string(s.routeStatus), string(RouteFailed))
	}

	s.routeStatus = RouteFailed
	s.touch()
	return true, nil
}

// Estimate prices the session's property with the current route distance.
func (s *Session) Estimate(strategy PricingStrategy) Estimate {
	return strategy.Calculate(s.property.PricingParams(s.route.DistanceKm))
}

// IncrementVersion bumps the version after a persisted change.
func (s *Session) IncrementVersion() {
	s.version++
}

func (s *Session) touch() {
	s.updatedAt = time.Now().UTC()
}
