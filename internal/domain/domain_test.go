package domain

import "testing"

func TestSplitPair(t *testing.T) {
	base, quote, ok := SplitPair("EUR/USD")
	if !ok || base != "EUR" || quote != "USD" {
		t.Fatalf("unexpected split: %s %s %v", base, quote, ok)
	}

	base, quote, ok = SplitPair(" gbp / jpy ")
	if !ok || base != "GBP" || quote != "JPY" {
		t.Fatalf("expected trimmed uppercase split, got %s %s %v", base, quote, ok)
	}

	for _, bad := range []string{"", "EURUSD", "EUR/USD/JPY", "/USD", "EUR/"} {
		if _, _, ok := SplitPair(bad); ok {
			t.Fatalf("expected split failure for %q", bad)
		}
	}
}

func TestPipSize(t *testing.T) {
	if got := PipSize("EUR/USD"); got != 0.0001 {
		t.Fatalf("expected 0.0001 for EUR/USD, got %v", got)
	}
	if got := PipSize("USD/JPY"); got != 0.01 {
		t.Fatalf("expected 0.01 for USD/JPY, got %v", got)
	}
	// Unparseable pairs fall back to the standard pip.
	if got := PipSize("garbage"); got != 0.0001 {
		t.Fatalf("expected fallback 0.0001, got %v", got)
	}
}

func TestSignalTypeIsValid(t *testing.T) {
	if !SignalBuy.IsValid() || !SignalSell.IsValid() {
		t.Fatal("expected BUY and SELL to be valid")
	}
	if SignalType("HOLD").IsValid() {
		t.Fatal("expected HOLD to be invalid")
	}
}
