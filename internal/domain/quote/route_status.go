package quote

import "fmt"

// RouteStatus tracks the route fetch triggered by the latest location pick.
type RouteStatus string

const (
	RouteIdle    RouteStatus = "idle"
	RoutePending RouteStatus = "pending"
	RouteReady   RouteStatus = "ready"
	RouteFailed  RouteStatus = "failed"
)

// validTransitions defines the state machine for route fetches.
var validTransitions = map[RouteStatus][]RouteStatus{
	RouteIdle:    {RoutePending},
	RoutePending: {RoutePending, RouteReady, RouteFailed},
	RouteReady:   {RoutePending},
	RouteFailed:  {RoutePending},
}

// IsValid returns true if the status is a recognized route status.
func (s RouteStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s RouteStatus) CanTransitionTo(target RouteStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsSettled returns true when no fetch is in flight.
func (s RouteStatus) IsSettled() bool {
	return s != RoutePending
}

// String returns the string representation of the status.
func (s RouteStatus) String() string {
	return string(s)
}

// ParseRouteStatus converts a string to a RouteStatus, returning an error if invalid.
func ParseRouteStatus(s string) (RouteStatus, error) {
	status := RouteStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid route status: %s", s)
	}
	return status, nil
}
