package strategy

import (
	"math"
	"testing"
)

// narrowBandParams makes band breaches easy to construct: a small window,
// tight multipliers in both regimes, and no confirmation requirement.
func narrowBandParams() Params {
	p := DefaultParams()
	p.Enabled = true
	p.BBWindow = 4
	p.ATRPeriod = 2
	p.StdDevBase = 0.5
	p.StdDevAlt = 0.5
	p.ConfirmationTicks = 0
	return p
}

func TestEvaluate_DisabledReturnsNil(t *testing.T) {
	p := narrowBandParams()
	p.Enabled = false
	if sig := Evaluate(80, []float64{100, 100, 100, 80}, p); sig != nil {
		t.Fatalf("disabled detector produced %+v", sig)
	}
}

func TestEvaluate_InsufficientHistory(t *testing.T) {
	p := narrowBandParams()
	if sig := Evaluate(80, []float64{100, 80}, p); sig != nil {
		t.Fatalf("short history produced %+v", sig)
	}
}

func TestEvaluate_BuyOnLowerBreach(t *testing.T) {
	p := narrowBandParams()
	// Window mean 95, pstdev ~8.66; lower band ~90.67 at mult 0.5.
	sig := Evaluate(80, []float64{100, 100, 100, 80}, p)
	if sig == nil {
		t.Fatal("expected BUY signal")
	}
	if sig.Action != ActionBuy {
		t.Fatalf("Action = %s, want BUY", sig.Action)
	}
	if sig.Reason != "Price below lower Bollinger Band" {
		t.Errorf("Reason = %q", sig.Reason)
	}
	if sig.Price != 80 {
		t.Errorf("Price = %v, want 80", sig.Price)
	}
	if sig.ATR == nil {
		t.Error("ATR should be set with enough history")
	} else if math.Abs(*sig.ATR-10) > 1e-9 {
		// Last two diffs: |100-100|=0, |80-100|=20.
		t.Errorf("ATR = %v, want 10", *sig.ATR)
	}
	if !(sig.LowerBand < sig.MiddleBand && sig.MiddleBand < sig.UpperBand) {
		t.Errorf("band ordering broken: %+v", sig)
	}
}

func TestEvaluate_SellOnUpperBreach(t *testing.T) {
	p := narrowBandParams()
	sig := Evaluate(120, []float64{100, 100, 100, 120}, p)
	if sig == nil || sig.Action != ActionSell {
		t.Fatalf("expected SELL, got %+v", sig)
	}
	if sig.Reason != "Price above upper Bollinger Band" {
		t.Errorf("Reason = %q", sig.Reason)
	}
}

func TestEvaluate_NoBreachInsideBands(t *testing.T) {
	p := narrowBandParams()
	if sig := Evaluate(95, []float64{100, 90, 100, 95}, p); sig != nil {
		t.Fatalf("in-band price produced %+v", sig)
	}
}

func TestEvaluate_ConfirmationRequiresAllRecentTicks(t *testing.T) {
	p := narrowBandParams()
	p.ConfirmationTicks = 2

	// Both of the last two samples breach the lower band (~85 at mult 0.5).
	if sig := Evaluate(80, []float64{100, 100, 80, 80}, p); sig == nil || sig.Action != ActionBuy {
		t.Fatalf("confirmed breach rejected, got %+v", sig)
	}

	// Only the final tick breaches.
	if sig := Evaluate(80, []float64{100, 100, 100, 80}, p); sig != nil {
		t.Fatalf("unconfirmed breach produced %+v", sig)
	}
}

func TestEvaluate_ConfirmationNeedsEnoughSamples(t *testing.T) {
	p := narrowBandParams()
	p.BBWindow = 2
	p.ConfirmationTicks = 2

	// A breach with only k samples stored cannot be confirmed.
	if sig := Evaluate(50, []float64{100, 50}, p); sig != nil {
		t.Fatalf("k samples should not confirm, got %+v", sig)
	}
}

func TestSelectMultiplier_RegimeSwitch(t *testing.T) {
	p := DefaultParams() // base 2.5, alt 2.8, switch 0.5

	if got := SelectMultiplier(0.6, true, p); got != p.StdDevAlt {
		t.Errorf("high-vol multiplier = %v, want %v", got, p.StdDevAlt)
	}
	if got := SelectMultiplier(0.4, true, p); got != p.StdDevBase {
		t.Errorf("low-vol multiplier = %v, want %v", got, p.StdDevBase)
	}
	// Switch is strict: equal ATR stays on the base multiplier.
	if got := SelectMultiplier(0.5, true, p); got != p.StdDevBase {
		t.Errorf("boundary multiplier = %v, want %v", got, p.StdDevBase)
	}
	if got := SelectMultiplier(99, false, p); got != p.StdDevBase {
		t.Errorf("without ATR the base multiplier must apply, got %v", got)
	}
}
