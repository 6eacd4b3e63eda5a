package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/avaluos-co/service-quote/internal/common/domain"
	quoteDomain "github.com/avaluos-co/service-quote/internal/domain/quote"
	"github.com/avaluos-co/service-quote/internal/geocoding"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
)

// Feature kinds of the map layers.
const (
	LayerOffice    = "office"
	LayerSelection = "selection"
	LayerRoute     = "route"
)

// MapSettings is the static configuration of the map picker.
type MapSettings struct {
	Office          quoteDomain.Location
	OfficeLabel     string
	TileURL         string
	Attribution     string
	Zoom            int
	GeocoderCountry string
	MaxRadiusKm     float64
}

// OfficeDTO is the fixed office marker.
type OfficeDTO struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Label string  `json:"label"`
}

// MapConfigDTO is everything a map client needs before the first pick.
type MapConfigDTO struct {
	TileURL         string    `json:"tile_url"`
	Attribution     string    `json:"attribution"`
	Zoom            int       `json:"zoom"`
	Center          OfficeDTO `json:"center"`
	Office          OfficeDTO `json:"office"`
	GeocoderCountry string    `json:"geocoder_country"`
	MaxRadiusKm     float64   `json:"max_radius_km"`
}

// SearchRequest is a geocoder search that picks the first result.
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
}

// SearchResultDTO is the session after a geocoder pick, with the place used.
type SearchResultDTO struct {
	Place   geocoding.Place `json:"place"`
	Session SessionDTO      `json:"session"`
}

// PickerService places the selection marker, triggers route fetches and
// renders the map layers of a session.
type PickerService struct {
	sessions   quoteDomain.SessionRepository
	pricing    quoteDomain.PricingStrategy
	dispatcher RouteDispatcher
	fetcher    *RouteFetcher
	geocoder   geocoding.Geocoder
	settings   MapSettings
	logger     *zap.Logger
}

// NewPickerService creates a new PickerService.
func NewPickerService(
	sessions quoteDomain.SessionRepository,
	pricing quoteDomain.PricingStrategy,
	dispatcher RouteDispatcher,
	fetcher *RouteFetcher,
	geocoder geocoding.Geocoder,
	settings MapSettings,
	logger *zap.Logger,
) *PickerService {
	return &PickerService{
		sessions:   sessions,
		pricing:    pricing,
		dispatcher: dispatcher,
		fetcher:    fetcher,
		geocoder:   geocoder,
		settings:   settings,
		logger:     logger,
	}
}

// MapConfig returns the static map configuration.
func (p *PickerService) MapConfig() MapConfigDTO {
	office := OfficeDTO{Lat: p.settings.Office.Lat, Lng: p.settings.Office.Lng, Label: p.settings.OfficeLabel}
	return MapConfigDTO{
		TileURL:         p.settings.TileURL,
		Attribution:     p.settings.Attribution,
		Zoom:            p.settings.Zoom,
		Center:          office,
		Office:          office,
		GeocoderCountry: p.settings.GeocoderCountry,
		MaxRadiusKm:     p.settings.MaxRadiusKm,
	}
}

// SelectLocation moves the selection marker to loc and fetches the route to it.
func (p *PickerService) SelectLocation(ctx context.Context, sessionID uuid.UUID, loc quoteDomain.Location) (*SessionDTO, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	if err := p.checkRadius(loc); err != nil {
		return nil, err
	}

	var seq int64
	if _, err := p.sessions.Mutate(ctx, sessionID, func(s *quoteDomain.Session) error {
		var err error
		seq, err = s.SelectLocation(loc)
		return err
	}); err != nil {
		return nil, err
	}

	pick := Pick{SessionID: sessionID, Seq: seq, Destination: loc}
	if err := p.dispatcher.Dispatch(ctx, pick); err != nil {
		p.logger.Error("failed to dispatch route fetch",
			zap.String("session_id", sessionID.String()),
			zap.Int64("pick_seq", seq),
			zap.Error(err),
		)
		if err := p.fetcher.MarkFailed(ctx, pick); err != nil {
			return nil, err
		}
	}

	session, err := p.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	result := toSessionDTO(session, p.pricing)
	return &result, nil
}

// Geocode searches addresses without touching any session.
func (p *PickerService) Geocode(ctx context.Context, query string) ([]geocoding.Place, error) {
	places, err := p.geocoder.Search(ctx, query)
	if errors.Is(err, geocoding.ErrNoResults) {
		return []geocoding.Place{}, nil
	}
	if err != nil {
		return nil, domain.NewUnavailableError("geocoder unavailable", err)
	}
	return places, nil
}

// SearchAndSelect geocodes query and selects its first result.
func (p *PickerService) SearchAndSelect(ctx context.Context, sessionID uuid.UUID, query string) (*SearchResultDTO, error) {
	places, err := p.geocoder.Search(ctx, query)
	if errors.Is(err, geocoding.ErrNoResults) {
		return nil, domain.NewNotFoundError("Place", query)
	}
	if err != nil {
		return nil, domain.NewUnavailableError("geocoder unavailable", err)
	}

	place := places[0]
	session, err := p.SelectLocation(ctx, sessionID, place.Location)
	if err != nil {
		return nil, err
	}
	return &SearchResultDTO{Place: place, Session: *session}, nil
}

// MapLayers renders the session as a GeoJSON FeatureCollection: the office,
// the selection if any, and the route if one was fetched.
func (p *PickerService) MapLayers(ctx context.Context, sessionID uuid.UUID) (*geojson.FeatureCollection, error) {
	session, err := p.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	fc := geojson.NewFeatureCollection()

	office := geojson.NewFeature(orb.Point{p.settings.Office.Lng, p.settings.Office.Lat})
	office.Properties["kind"] = LayerOffice
	office.Properties["label"] = p.settings.OfficeLabel
	fc.Append(office)

	if sel := session.Selection(); sel != nil {
		selection := geojson.NewFeature(orb.Point{sel.Lng, sel.Lat})
		selection.Properties["kind"] = LayerSelection
		fc.Append(selection)
	}

	if route := session.Route(); len(route.Path) > 0 {
		line := geojson.NewFeature(route.LineString())
		line.Properties["kind"] = LayerRoute
		line.Properties["distance_km"] = route.DistanceKm
		line.Properties["duration_minutes"] = route.DurationMinutes
		line.Properties["duration_label"] = route.DurationLabel()
		line.Properties["status"] = session.RouteStatus().String()
		fc.Append(line)
	}

	return fc, nil
}

func (p *PickerService) checkRadius(loc quoteDomain.Location) error {
	if p.settings.MaxRadiusKm <= 0 {
		return nil
	}
	if d := p.settings.Office.DistanceKm(loc); d > p.settings.MaxRadiusKm {
		return domain.NewValidationError(fmt.Sprintf(
			"location is %.0f km from the office, beyond the %.0f km service radius", d, p.settings.MaxRadiusKm))
	}
	return nil
}
