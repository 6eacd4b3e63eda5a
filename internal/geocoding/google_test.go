package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

func TestGoogleGeocoder_Search(t *testing.T) {
	var gotComponents string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotComponents = r.URL.Query().Get("components")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [{
				"formatted_address": "Cra. 7 #6-66, Bogotá, Colombia",
				"geometry": {"location": {"lat": 4.5981, "lng": -74.0758}}
			}]
		}`))
	}))
	defer srv.Close()

	g, err := NewGoogleGeocoder("test-key", "co", maps.WithBaseURL(srv.URL))
	require.NoError(t, err)

	places, err := g.Search(context.Background(), "Carrera 7 6-66")
	require.NoError(t, err)

	assert.Equal(t, "country:CO", gotComponents)
	require.Len(t, places, 1)
	assert.Equal(t, "Cra. 7 #6-66, Bogotá, Colombia", places[0].Label)
	assert.Equal(t, 4.5981, places[0].Location.Lat)
}
