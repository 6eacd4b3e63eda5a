// Package catalogdata holds the embedded appraisal service catalog.
package catalogdata

import (
	_ "embed"
	"fmt"

	"github.com/avaluos-co/service-quote/internal/domain/catalog"
	"gopkg.in/yaml.v3"
)

//go:embed services.yaml
var servicesYAML []byte

type document struct {
	Services []catalog.Service `yaml:"services"`
}

// Load decodes the embedded catalog.
func Load() ([]catalog.Service, error) {
	return Parse(servicesYAML)
}

// Parse decodes a catalog document. Entries need a name and a category.
func Parse(raw []byte) ([]catalog.Service, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode service catalog: %w", err)
	}
	for i, s := range doc.Services {
		if s.Name == "" || s.Category == "" {
			return nil, fmt.Errorf("service catalog entry %d is missing a name or category", i)
		}
	}
	return doc.Services, nil
}
