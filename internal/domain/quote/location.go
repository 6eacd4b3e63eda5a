package quote

import (
	"fmt"
	"math"

	"github.com/avaluos-co/service-quote/internal/common/domain"
)

// Location is a WGS84 coordinate in the map's lat/lng order.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Validate rejects coordinates outside the WGS84 range.
func (l Location) Validate() error {
	if math.IsNaN(l.Lat) || l.Lat < -90 || l.Lat > 90 {
		return domain.NewValidationError(fmt.Sprintf("latitude out of range: %v", l.Lat))
	}
	if math.IsNaN(l.Lng) || l.Lng < -180 || l.Lng > 180 {
		return domain.NewValidationError(fmt.Sprintf("longitude out of range: %v", l.Lng))
	}
	return nil
}

// String renders the coordinate as "lat,lng".
func (l Location) String() string {
	return fmt.Sprintf("%f,%f", l.Lat, l.Lng)
}

// DistanceKm returns the great-circle distance to other (haversine).
func (l Location) DistanceKm(other Location) float64 {
	const earthRadiusKm = 6371.0

	dLat := degreesToRadians(other.Lat - l.Lat)
	dLng := degreesToRadians(other.Lng - l.Lng)

	lat1Rad := degreesToRadians(l.Lat)
	lat2Rad := degreesToRadians(other.Lat)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLng/2)*math.Sin(dLng/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
