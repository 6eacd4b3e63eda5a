package application

import "github.com/avaluos-co/service-quote/internal/domain/catalog"

// CatalogService serves the read-only appraisal service catalog.
type CatalogService struct {
	services []catalog.Service
	facets   catalog.Facets
}

// NewCatalogService creates a service over a fixed catalog.
func NewCatalogService(services []catalog.Service) *CatalogService {
	return &CatalogService{
		services: services,
		facets:   catalog.BuildFacets(services),
	}
}

// Search evaluates f over the catalog.
func (s *CatalogService) Search(f catalog.Filter) catalog.Result {
	return catalog.Evaluate(f, s.services)
}

// Facets returns the filter options.
func (s *CatalogService) Facets() catalog.Facets {
	return s.facets
}
