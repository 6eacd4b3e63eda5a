package geocoding

import (
	"context"
	"fmt"
	"strings"

	"github.com/avaluos-co/service-quote/internal/domain/quote"
	"googlemaps.github.io/maps"
)

// GoogleGeocoder uses the Google Geocoding API.
type GoogleGeocoder struct {
	client  *maps.Client
	country string
}

// NewGoogleGeocoder creates a geocoder restricted to country (ISO 3166-1 alpha-2).
func NewGoogleGeocoder(apiKey, country string, opts ...maps.ClientOption) (*GoogleGeocoder, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("maps.NewClient: %w", err)
	}
	return &GoogleGeocoder{client: client, country: strings.ToUpper(country)}, nil
}

// Search geocodes query.
func (g *GoogleGeocoder) Search(ctx context.Context, query string) ([]Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrNoResults
	}

	req := &maps.GeocodingRequest{Address: query}
	if g.country != "" {
		req.Components = map[maps.Component]string{maps.ComponentCountry: g.country}
		req.Region = strings.ToLower(g.country)
	}

	results, err := g.client.Geocode(ctx, req)
	if err != nil {
		if strings.Contains(err.Error(), "ZERO_RESULTS") {
			return nil, ErrNoResults
		}
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	if len(results) == 0 {
		return nil, ErrNoResults
	}

	places := make([]Place, len(results))
	for i, r := range results {
		places[i] = Place{
			Label:    r.FormattedAddress,
			Location: quote.Location{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
		}
	}
	return places, nil
}
