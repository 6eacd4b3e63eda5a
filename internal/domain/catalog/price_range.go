package catalog

import (
	"math"
	"strconv"
	"strings"
)

// PriceRange is a closed price bucket. Max < 0 means unbounded.
type PriceRange struct {
	Label string `json:"label"`
	Min   int64  `json:"min"`
	Max   int64  `json:"max"`
}

// PriceRanges are the fixed buckets offered by the price filter.
var PriceRanges = []PriceRange{
	{Label: "$0 - $500.000", Min: 0, Max: 500000},
	{Label: "$500.001 - $1.000.000", Min: 500001, Max: 1000000},
	{Label: "$1.000.001 - $5.000.000", Min: 1000001, Max: 5000000},
	{Label: "Más de $5.000.000", Min: 5000001, Max: -1},
}

// Contains reports whether price falls inside the bucket.
func (r PriceRange) Contains(price int64) bool {
	if price < r.Min {
		return false
	}
	return r.Max < 0 || price <= r.Max
}

// FindPriceRange looks a bucket up by its label.
func FindPriceRange(label string) (PriceRange, bool) {
	for _, r := range PriceRanges {
		if r.Label == label {
			return r, true
		}
	}
	return PriceRange{}, false
}

// ParsePrice concatenates every digit run of a price label into one integer,
// so "$1.200.000" is 1200000. Labels without digits parse as 0.
func ParsePrice(label string) int64 {
	var digits strings.Builder
	for _, r := range label {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	n, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return math.MaxInt64
	}
	return n
}
