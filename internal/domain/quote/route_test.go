package quote

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRouteFromMetres(t *testing.T) {
	r := NewRouteFromMetres(12345, 750, nil)

	assert.InDelta(t, 12.345, r.DistanceKm, 1e-9)
	assert.InDelta(t, 12.5, r.DurationMinutes, 1e-9)
	assert.Equal(t, "12.50 minutos", r.DurationLabel())
}

func TestRoute_ZeroHasNoLabel(t *testing.T) {
	var r Route
	assert.True(t, r.IsZero())
	assert.Empty(t, r.DurationLabel())
}

func TestPathFromLngLat_SwapsAxes(t *testing.T) {
	path := PathFromLngLat([][]float64{{-74.07, 4.60}, {-74.08}, {-74.09, 4.62}})

	require.Len(t, path, 2)
	assert.Equal(t, Location{Lat: 4.60, Lng: -74.07}, path[0])
	assert.Equal(t, Location{Lat: 4.62, Lng: -74.09}, path[1])
}

func TestRoute_LineStringUsesGeoJSONOrder(t *testing.T) {
	r := Route{Path: []Location{{Lat: 4.6, Lng: -74.0}}}

	assert.Equal(t, orb.LineString{{-74.0, 4.6}}, r.LineString())
}

func TestLocation_Validate(t *testing.T) {
	assert.NoError(t, Location{Lat: 4.6, Lng: -74}.Validate())
	assert.Error(t, Location{Lat: 91, Lng: 0}.Validate())
	assert.Error(t, Location{Lat: 0, Lng: -181}.Validate())
}

func TestLocation_DistanceKm(t *testing.T) {
	bogota := Location{Lat: 4.601955010311332, Lng: -74.07203983933485}
	medellin := Location{Lat: 6.2442, Lng: -75.5812}

	assert.InDelta(t, 0, bogota.DistanceKm(bogota), 1e-9)
	assert.InDelta(t, 245, bogota.DistanceKm(medellin), 10)
}
