package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNominatimGeocoder_Search(t *testing.T) {
	var gotQuery map[string]string
	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"display_name": "Plaza de Bolívar, Bogotá", "lat": "4.598", "lon": "-74.076"},
			{"display_name": "broken", "lat": "x", "lon": "y"},
			{"display_name": "Bolívar, Cauca", "lat": "1.836", "lon": "-76.967"}
		]`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(NominatimConfig{
		BaseURL:      srv.URL,
		CountryCodes: "co",
		UserAgent:    "service-quote-test",
		Timeout:      time.Second,
	})
	places, err := g.Search(context.Background(), "  plaza de bolivar ")
	require.NoError(t, err)

	assert.Equal(t, "json", gotQuery["format"])
	assert.Equal(t, "plaza de bolivar", gotQuery["q"])
	assert.Equal(t, "co", gotQuery["countrycodes"])
	assert.Equal(t, "5", gotQuery["limit"])
	assert.Equal(t, "service-quote-test", gotAgent)

	require.Len(t, places, 2)
	assert.Equal(t, "Plaza de Bolívar, Bogotá", places[0].Label)
	assert.Equal(t, 4.598, places[0].Location.Lat)
	assert.Equal(t, -74.076, places[0].Location.Lng)
}

func TestNominatimGeocoder_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(NominatimConfig{BaseURL: srv.URL})
	_, err := g.Search(context.Background(), "nowhere")
	assert.ErrorIs(t, err, ErrNoResults)

	_, err = g.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestNominatimGeocoder_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(NominatimConfig{BaseURL: srv.URL})
	_, err := g.Search(context.Background(), "bogota")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoResults)
}
