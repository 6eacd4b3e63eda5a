package routing

import (
	"context"
	"fmt"

	"github.com/avaluos-co/service-quote/internal/domain/quote"
	"googlemaps.github.io/maps"
)

// GoogleProvider uses the Google Directions API in driving mode.
type GoogleProvider struct {
	client *maps.Client
}

// NewGoogleProvider creates a Directions client. Extra options are passed to
// maps.NewClient (e.g. maps.WithBaseURL in tests).
func NewGoogleProvider(apiKey string, opts ...maps.ClientOption) (*GoogleProvider, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("maps.NewClient: %w", err)
	}
	return &GoogleProvider{client: client}, nil
}

// Route returns the first leg of the first suggested driving route.
func (p *GoogleProvider) Route(ctx context.Context, origin, destination quote.Location) (quote.Route, error) {
	routes, _, err := p.client.Directions(ctx, &maps.DirectionsRequest{
		Origin:      origin.String(),
		Destination: destination.String(),
		Mode:        maps.TravelModeDriving,
		Region:      "co",
	})
	if err != nil {
		return quote.Route{}, fmt.Errorf("directions request failed: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return quote.Route{}, ErrNoRoute
	}

	leg := routes[0].Legs[0]
	points, err := routes[0].OverviewPolyline.Decode()
	if err != nil {
		return quote.Route{}, fmt.Errorf("failed to decode route polyline: %w", err)
	}
	path := make([]quote.Location, len(points))
	for i, pt := range points {
		path[i] = quote.Location{Lat: pt.Lat, Lng: pt.Lng}
	}

	return quote.NewRouteFromMetres(float64(leg.Distance.Meters), leg.Duration.Seconds(), path), nil
}
