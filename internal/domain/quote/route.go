package quote

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Route is a value object for the driving route from the office to the property.
// It is replaced wholesale on every successful fetch.
type Route struct {
	DistanceKm      float64    `json:"distance_km"`
	DurationMinutes float64    `json:"duration_minutes"`
	Path            []Location `json:"path"`
}

// NewRouteFromMetres converts provider units (metres, seconds) into a Route.
func NewRouteFromMetres(distanceMetres, durationSeconds float64, path []Location) Route {
	return Route{
		DistanceKm:      distanceMetres / 1000,
		DurationMinutes: durationSeconds / 60,
		Path:            path,
	}
}

// IsZero reports whether no route has been fetched yet.
func (r Route) IsZero() bool {
	return r.DistanceKm == 0 && r.DurationMinutes == 0 && len(r.Path) == 0
}

// DurationLabel renders the duration as shown to the client, e.g. "12.50 minutos".
func (r Route) DurationLabel() string {
	if r.IsZero() {
		return ""
	}
	return fmt.Sprintf("%.2f minutos", r.DurationMinutes)
}

// LineString returns the path in GeoJSON axis order (lng, lat).
func (r Route) LineString() orb.LineString {
	ls := make(orb.LineString, len(r.Path))
	for i, p := range r.Path {
		ls[i] = orb.Point{p.Lng, p.Lat}
	}
	return ls
}

// PathFromLngLat converts [lng, lat] pairs into map-order locations.
// Pairs with fewer than two values are skipped.
func PathFromLngLat(coords [][]float64) []Location {
	path := make([]Location, 0, len(coords))
	for _, c := range coords {
		if len(c) < 2 {
			continue
		}
		path = append(path, Location{Lat: c[1], Lng: c[0]})
	}
	return path
}
