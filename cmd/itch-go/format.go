package main

import (
	"github.com/shopspring/decimal"

	"github.com/marketfeeds/itch-go"
)

// formatPrice renders a wire price for terminal display as an exact
// decimal string, never a rounded float.
func formatPrice(p uint32) string {
	return itch.PriceToDecimal(p).StringFixed(4)
}

// formatSignedPrice renders a snapshot's signed sentinel-padded price
// column: -1 prints as "-" since it means "no level at this depth",
// not a negative price.
func formatSignedPrice(p int64) string {
	if p < 0 {
		return "-"
	}
	return decimal.New(p, -4).StringFixed(4)
}
