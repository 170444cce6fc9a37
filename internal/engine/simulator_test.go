package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/avelov/arbscan/internal/domain"
)

func TestSimulateBuyDividesByPrice(t *testing.T) {
	// Spending 100 USDT on BTC at ask 50000 with a 0.1% fee.
	out, err := Simulate(100, 50000, 0.001, true)
	if err != nil {
		t.Fatalf("Simulate returned error: %v", err)
	}
	want := (100.0 / 50000.0) * 0.999
	if math.Abs(out-want) > 1e-15 {
		t.Fatalf("buy output = %v, want %v", out, want)
	}
}

func TestSimulateSellMultipliesByPrice(t *testing.T) {
	// Selling 2 BTC at bid 50000 with a 0.1% fee.
	out, err := Simulate(2, 50000, 0.001, false)
	if err != nil {
		t.Fatalf("Simulate returned error: %v", err)
	}
	want := 2.0 * 50000.0 * 0.999
	if math.Abs(out-want) > 1e-9 {
		t.Fatalf("sell output = %v, want %v", out, want)
	}
}

func TestSimulateZeroFee(t *testing.T) {
	out, err := Simulate(10, 4, 0, false)
	if err != nil {
		t.Fatalf("Simulate returned error: %v", err)
	}
	if out != 40 {
		t.Fatalf("fee-free sell output = %v, want 40", out)
	}
}

func TestSimulateRoundTripLosesOnlyFees(t *testing.T) {
	// Buying and immediately selling at the same price must lose exactly the
	// two fee deductions.
	bought, err := Simulate(100, 250, 0.002, true)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	sold, err := Simulate(bought, 250, 0.002, false)
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	want := 100 * 0.998 * 0.998
	if math.Abs(sold-want) > 1e-12 {
		t.Fatalf("round trip = %v, want %v", sold, want)
	}
}

func TestSimulateRejectsNonPositivePrice(t *testing.T) {
	for _, price := range []float64{0, -1} {
		if _, err := Simulate(100, price, 0.001, true); !errors.Is(err, domain.ErrInvalidPrice) {
			t.Errorf("Simulate(price=%v) error = %v, want ErrInvalidPrice", price, err)
		}
	}
}
