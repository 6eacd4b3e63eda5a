package routing

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/avaluos-co/service-quote/internal/domain/quote"
	"github.com/go-resty/resty/v2"
)

const (
	// DefaultOSRMBaseURL is the public OSRM demo server.
	DefaultOSRMBaseURL = "https://router.project-osrm.org"
	defaultHTTPTimeout = 8 * time.Second
)

type osrmResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Routes  []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Geometry struct {
		Coordinates [][]float64 `json:"coordinates"`
	} `json:"geometry"`
	Legs []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"legs"`
}

// OSRMProvider queries an OSRM server's route service.
type OSRMProvider struct {
	client *resty.Client
}

// NewOSRMProvider creates a provider for the OSRM server at baseURL.
func NewOSRMProvider(baseURL string, timeout time.Duration) *OSRMProvider {
	if baseURL == "" {
		baseURL = DefaultOSRMBaseURL
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &OSRMProvider{client: client}
}

// Route requests the full GeoJSON geometry and reads distance and duration
// from the first leg of the first route.
func (p *OSRMProvider) Route(ctx context.Context, origin, destination quote.Location) (quote.Route, error) {
	var body osrmResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"overview":   "full",
			"geometries": "geojson",
			"steps":      "true",
		}).
		SetResult(&body).
		Get("/route/v1/driving/" + lngLat(origin) + ";" + lngLat(destination))
	if err != nil {
		return quote.Route{}, fmt.Errorf("osrm request failed: %w", err)
	}
	if resp.IsError() {
		return quote.Route{}, fmt.Errorf("osrm returned status %d", resp.StatusCode())
	}
	if body.Code != "" && body.Code != "Ok" {
		return quote.Route{}, fmt.Errorf("osrm returned code %s: %s", body.Code, body.Message)
	}
	if len(body.Routes) == 0 || len(body.Routes[0].Legs) == 0 {
		return quote.Route{}, ErrNoRoute
	}

	r := body.Routes[0]
	leg := r.Legs[0]
	return quote.NewRouteFromMetres(leg.Distance, leg.Duration, quote.PathFromLngLat(r.Geometry.Coordinates)), nil
}

func lngLat(l quote.Location) string {
	return strconv.FormatFloat(l.Lng, 'f', -1, 64) + "," + strconv.FormatFloat(l.Lat, 'f', -1, 64)
}
