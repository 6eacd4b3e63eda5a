package geocoding

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/avaluos-co/service-quote/internal/domain/quote"
	"github.com/go-resty/resty/v2"
)

const (
	// DefaultNominatimBaseURL is the public OpenStreetMap Nominatim instance.
	DefaultNominatimBaseURL = "https://nominatim.openstreetmap.org"
	defaultHTTPTimeout      = 8 * time.Second
	defaultLimit            = 5
)

type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// NominatimConfig configures a NominatimGeocoder.
type NominatimConfig struct {
	BaseURL      string
	CountryCodes string
	UserAgent    string
	Limit        int
	Timeout      time.Duration
}

// NominatimGeocoder searches the OpenStreetMap Nominatim API.
type NominatimGeocoder struct {
	client       *resty.Client
	countryCodes string
	limit        int
}

// NewNominatimGeocoder creates a geocoder. Nominatim's usage policy requires a
// descriptive User-Agent.
func NewNominatimGeocoder(cfg NominatimConfig) *NominatimGeocoder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultNominatimBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHTTPTimeout
	}
	if cfg.Limit <= 0 {
		cfg.Limit = defaultLimit
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	return &NominatimGeocoder{client: client, countryCodes: cfg.CountryCodes, limit: cfg.Limit}
}

// Search queries /search restricted to the configured countries.
func (g *NominatimGeocoder) Search(ctx context.Context, query string) ([]Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrNoResults
	}

	params := map[string]string{
		"format": "json",
		"q":      query,
		"limit":  strconv.Itoa(g.limit),
	}
	if g.countryCodes != "" {
		params["countrycodes"] = g.countryCodes
	}

	var results []nominatimResult
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&results).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("nominatim request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("nominatim returned status %d", resp.StatusCode())
	}

	places := make([]Place, 0, len(results))
	for _, r := range results {
		lat, errLat := strconv.ParseFloat(r.Lat, 64)
		lng, errLng := strconv.ParseFloat(r.Lon, 64)
		if errLat != nil || errLng != nil {
			continue
		}
		places = append(places, Place{Label: r.DisplayName, Location: quote.Location{Lat: lat, Lng: lng}})
	}
	if len(places) == 0 {
		return nil, ErrNoResults
	}
	return places, nil
}
