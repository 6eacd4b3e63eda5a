package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testServices = []Service{
	{Name: "Avalúo Comercial", Price: "$450.000", Category: "Inmuebles", Type: "Urbano"},
	{Name: "Avalúo Rural", Price: "$1.200.000", Category: "Inmuebles", Type: "Rural"},
	{Name: "Avalúo de Maquinaria", Price: "$6.000.000", Category: "Maquinaria", Type: "Industrial"},
}

func names(services []Service) []string {
	out := make([]string, len(services))
	for i, s := range services {
		out[i] = s.Name
	}
	return out
}

func TestParsePrice(t *testing.T) {
	assert.Equal(t, int64(450000), ParsePrice("$450.000"))
	assert.Equal(t, int64(1200000), ParsePrice("$1.200.000"))
	assert.Equal(t, int64(0), ParsePrice("A convenir"))
	assert.Equal(t, int64(0), ParsePrice(""))
}

func TestPriceRange_Contains(t *testing.T) {
	first, ok := FindPriceRange("$0 - $500.000")
	require.True(t, ok)
	assert.True(t, first.Contains(0))
	assert.True(t, first.Contains(500000))
	assert.False(t, first.Contains(500001))

	last, ok := FindPriceRange("Más de $5.000.000")
	require.True(t, ok)
	assert.True(t, last.Contains(5000001))
	assert.True(t, last.Contains(900000000))
	assert.False(t, last.Contains(5000000))

	_, ok = FindPriceRange("gratis")
	assert.False(t, ok)
}

func TestFilter_EmptyMatchesAll(t *testing.T) {
	assert.Len(t, Filter{}.Apply(testServices), 3)
	assert.False(t, Filter{}.IsActive())
}

func TestFilter_Conjunction(t *testing.T) {
	f := Filter{Search: "avalúo", Categories: []string{"Inmuebles"}}
	assert.Equal(t, []string{"Avalúo Comercial", "Avalúo Rural"}, names(f.Apply(testServices)))

	f.PriceRange = "$1.000.001 - $5.000.000"
	assert.Equal(t, []string{"Avalúo Rural"}, names(f.Apply(testServices)))

	f.Types = []string{"Urbano"}
	assert.Empty(t, f.Apply(testServices))
}

func TestFilter_SearchIsCaseInsensitive(t *testing.T) {
	f := Filter{Search: "MAQUINARIA"}
	assert.Equal(t, []string{"Avalúo de Maquinaria"}, names(f.Apply(testServices)))
}

func TestFilter_UnknownPriceRangeImposesNoConstraint(t *testing.T) {
	f := Filter{PriceRange: "gratis"}
	assert.Len(t, f.Apply(testServices), 3)
}

func TestFilter_ToggleRemoveReset(t *testing.T) {
	f := Filter{}.WithCategory("Inmuebles", true).WithCategory("Maquinaria", true).WithCategory("Inmuebles", true)
	assert.Equal(t, []string{"Maquinaria", "Inmuebles"}, f.Categories)

	f = f.WithType("Rural", true)
	f.Search = "rural"
	f.PriceRange = "$0 - $500.000"

	f = f.Remove(FilterCategory, "Maquinaria")
	assert.Equal(t, []string{"Inmuebles"}, f.Categories)
	f = f.Remove(FilterPrice, "")
	assert.Empty(t, f.PriceRange)
	f = f.Remove(FilterSearch, "")
	assert.Empty(t, f.Search)
	f = f.Remove(FilterType, "Rural")
	assert.Empty(t, f.Types)

	assert.True(t, f.IsActive())
	assert.False(t, f.Reset().IsActive())
}

func TestEvaluate_EmptyMessage(t *testing.T) {
	res := Evaluate(Filter{Search: "barco"}, testServices)
	assert.Zero(t, res.Total)
	assert.Equal(t, NoResultsMessage, res.Message)

	res = Evaluate(Filter{}, testServices)
	assert.Equal(t, 3, res.Total)
	assert.Empty(t, res.Message)
}

func TestBuildFacets_KeepsCatalogOrder(t *testing.T) {
	facets := BuildFacets(testServices)

	assert.Equal(t, []string{"Inmuebles", "Maquinaria"}, facets.Categories)
	assert.Equal(t, []string{"Urbano", "Rural", "Industrial"}, facets.Types)
	assert.Len(t, facets.PriceRanges, 4)
}
