package domain

import (
	"fmt"
	"math"
)

// CentsFromPrice converts a decimal price to the integer-cents representation
// the external table store persists. Invariant: cents = round(price * 100).
func CentsFromPrice(price float64) int64 {
	if price <= 0 {
		return 0
	}
	return int64(math.Round(price * 100))
}

// PriceFromCents converts stored integer cents back to a decimal price.
func PriceFromCents(cents int64) float64 {
	if cents <= 0 {
		return 0
	}
	return float64(cents) / 100
}

// PlaceholderThumbnail derives a deterministic placeholder image URL from a
// course id, used when no thumbnail was supplied.
func PlaceholderThumbnail(courseID string) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/640/360", courseID)
}
