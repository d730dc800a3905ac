package domain

import (
	"math"
	"testing"
)

func TestPriceCentsRoundTrip(t *testing.T) {
	prices := []float64{0, 0.01, 0.1, 9.99, 10, 19.95, 49.5, 199.99, 1234.56}
	for _, p := range prices {
		cents := CentsFromPrice(p)
		back := PriceFromCents(cents)
		if math.Abs(back-p) > 1e-9 {
			t.Fatalf("price %v round-tripped to %v (cents=%d)", p, back, cents)
		}
		// Converting again must be idempotent.
		if again := CentsFromPrice(back); again != cents {
			t.Fatalf("price %v cents not idempotent: %d vs %d", p, cents, again)
		}
	}
}

func TestCentsFromPriceNeverNegative(t *testing.T) {
	if got := CentsFromPrice(-5); got != 0 {
		t.Fatalf("negative price should clamp to 0 cents, got %d", got)
	}
	if got := PriceFromCents(-100); got != 0 {
		t.Fatalf("negative cents should clamp to 0, got %v", got)
	}
}

func TestCentsFromPriceRounds(t *testing.T) {
	// 19.995 * 100 rounds to 2000, not truncates to 1999.
	if got := CentsFromPrice(19.995); got != 2000 {
		t.Fatalf("expected 2000 cents, got %d", got)
	}
}

func TestFree(t *testing.T) {
	if !(Course{Price: 0}).Free() {
		t.Fatal("zero price should be free")
	}
	if (Course{Price: 9.99}).Free() {
		t.Fatal("paid course should not be free")
	}
}

func TestPlaceholderThumbnailDeterministic(t *testing.T) {
	a := PlaceholderThumbnail("c1")
	b := PlaceholderThumbnail("c1")
	if a != b {
		t.Fatalf("placeholder must be deterministic: %q vs %q", a, b)
	}
	if a == PlaceholderThumbnail("c2") {
		t.Fatal("different ids should derive different thumbnails")
	}
}
