package quote

import (
	"math"

	"github.com/dustin/go-humanize"
)

// FormatCOP renders whole pesos the way es-CO does, e.g. "$550.000".
func FormatCOP(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + "$" + humanize.FormatInteger("#.###,", int(amount))
}

// RoundCOP rounds a fractional amount to whole pesos.
func RoundCOP(amount float64) int64 {
	return int64(math.Round(amount))
}
