// Package geocoding turns free-text addresses into map coordinates.
package geocoding

import (
	"context"
	"errors"

	"github.com/avaluos-co/service-quote/internal/domain/quote"
)

// ErrNoResults is returned when a search matches nothing.
var ErrNoResults = errors.New("geocoding: no results")

// Place is one geocoder match.
type Place struct {
	Label    string         `json:"label"`
	Location quote.Location `json:"location"`
}

// Geocoder searches addresses, best match first.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]Place, error)
}
