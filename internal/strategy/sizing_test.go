package strategy

import "testing"

func TestPositionSize_ATRMode(t *testing.T) {
	p := DefaultParams() // mode ATR, atr_multiplier 1.5, risk 1%
	atr := 2.0

	// Risk budget 100, stop distance 3 → 33 shares.
	if got := PositionSize(100, &atr, 10000, p); got != 33 {
		t.Errorf("qty = %d, want 33", got)
	}
}

func TestPositionSize_ATRModeWithoutATRFallsBackToPct(t *testing.T) {
	p := DefaultParams() // stop_loss_pct 0.07

	// Stop distance 7, risk budget 100 → 14 shares.
	if got := PositionSize(100, nil, 10000, p); got != 14 {
		t.Errorf("qty = %d, want 14", got)
	}
}

func TestPositionSize_PctMode(t *testing.T) {
	p := DefaultParams()
	p.StopLossMode = StopModePct
	p.StopLossPct = 0.05
	atr := 2.0

	// Pct mode ignores ATR: stop distance 5 → 20 shares.
	if got := PositionSize(100, &atr, 10000, p); got != 20 {
		t.Errorf("qty = %d, want 20", got)
	}
}

func TestPositionSize_MinimumOneShare(t *testing.T) {
	p := DefaultParams()
	p.RiskPerTradePct = 0.0001

	if got := PositionSize(100, nil, 100, p); got != 1 {
		t.Errorf("qty = %d, want 1", got)
	}
}

func TestPositionSize_ShrinksWithBalance(t *testing.T) {
	p := DefaultParams()
	atr := 2.0

	big := PositionSize(100, &atr, 10000, p)
	small := PositionSize(100, &atr, 1000, p)
	if small >= big {
		t.Errorf("size should shrink with the balance: %d vs %d", small, big)
	}
}
