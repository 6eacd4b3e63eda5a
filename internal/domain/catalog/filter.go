package catalog

import (
	"slices"
	"strings"
)

// NoResultsMessage is shown when a filter matches nothing.
const NoResultsMessage = "No se encontraron servicios que coincidan con tu búsqueda."

// FilterKind names one removable part of a Filter.
type FilterKind string

const (
	FilterCategory FilterKind = "category"
	FilterType     FilterKind = "type"
	FilterPrice    FilterKind = "price"
	FilterSearch   FilterKind = "search"
)

// Filter is the transient selection of a catalog browser. All set predicates
// are combined with AND; empty predicates match everything.
type Filter struct {
	Search     string   `json:"search"`
	PriceRange string   `json:"price_range"`
	Categories []string `json:"categories"`
	Types      []string `json:"types"`
}

// Matches reports whether s passes every predicate of the filter.
func (f Filter) Matches(s Service) bool {
	if q := strings.ToLower(f.Search); q != "" && !strings.Contains(strings.ToLower(s.Name), q) {
		return false
	}
	if f.PriceRange != "" {
		// Unknown labels impose no price constraint.
		if r, ok := FindPriceRange(f.PriceRange); ok && !r.Contains(s.ParsedPrice()) {
			return false
		}
	}
	if len(f.Categories) > 0 && !slices.Contains(f.Categories, s.Category) {
		return false
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, s.Type) {
		return false
	}
	return true
}

// Apply returns the services matching the filter, in catalog order.
func (f Filter) Apply(services []Service) []Service {
	out := make([]Service, 0, len(services))
	for _, s := range services {
		if f.Matches(s) {
			out = append(out, s)
		}
	}
	return out
}

// IsActive reports whether any predicate is set.
func (f Filter) IsActive() bool {
	return f.Search != "" || f.PriceRange != "" || len(f.Categories) > 0 || len(f.Types) > 0
}

// WithCategory toggles category c on or off.
func (f Filter) WithCategory(c string, on bool) Filter {
	f.Categories = toggle(f.Categories, c, on)
	return f
}

// WithType toggles type t on or off.
func (f Filter) WithType(t string, on bool) Filter {
	f.Types = toggle(f.Types, t, on)
	return f
}

// Remove clears one predicate. For categories and types only value is removed.
func (f Filter) Remove(kind FilterKind, value string) Filter {
	switch kind {
	case FilterCategory:
		if value != "" {
			f.Categories = toggle(f.Categories, value, false)
		}
	case FilterType:
		if value != "" {
			f.Types = toggle(f.Types, value, false)
		}
	case FilterPrice:
		f.PriceRange = ""
	case FilterSearch:
		f.Search = ""
	}
	return f
}

// Reset returns the empty filter.
func (f Filter) Reset() Filter {
	return Filter{}
}

func toggle(set []string, v string, on bool) []string {
	out := make([]string, 0, len(set)+1)
	for _, s := range set {
		if s != v {
			out = append(out, s)
		}
	}
	if on {
		out = append(out, v)
	}
	return out
}

// Result is one evaluation of a filter over the catalog.
type Result struct {
	Filter   Filter    `json:"filter"`
	Services []Service `json:"services"`
	Total    int       `json:"total"`
	Message  string    `json:"message,omitempty"`
}

// Evaluate applies f and fills in the empty-result message.
func Evaluate(f Filter, services []Service) Result {
	matched := f.Apply(services)
	res := Result{Filter: f, Services: matched, Total: len(matched)}
	if len(matched) == 0 {
		res.Message = NoResultsMessage
	}
	return res
}
