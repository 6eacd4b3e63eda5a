// Package routing fetches driving routes from external routing services.
package routing

import (
	"context"
	"errors"

	"github.com/avaluos-co/service-quote/internal/domain/quote"
)

// ErrNoRoute is returned when the provider answers but finds no drivable route.
var ErrNoRoute = errors.New("routing: no route found")

// Provider fetches the driving route between two points.
type Provider interface {
	Route(ctx context.Context, origin, destination quote.Location) (quote.Route, error)
}
