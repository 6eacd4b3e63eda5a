package catalog

// Facets lists the options a catalog browser offers.
type Facets struct {
	Categories  []string     `json:"categories"`
	Types       []string     `json:"types"`
	PriceRanges []PriceRange `json:"price_ranges"`
}

// BuildFacets collects distinct categories and types in first-seen order.
func BuildFacets(services []Service) Facets {
	return Facets{
		Categories:  distinct(services, func(s Service) string { return s.Category }),
		Types:       distinct(services, func(s Service) string { return s.Type }),
		PriceRanges: PriceRanges,
	}
}

func distinct(services []Service, key func(Service) string) []string {
	seen := make(map[string]struct{}, len(services))
	out := make([]string, 0)
	for _, s := range services {
		k := key(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
