package strategy

import "testing"

func TestParamStore_Update(t *testing.T) {
	s := NewParamStore(DefaultParams())

	err := s.Update(map[string]any{
		"enabled":            true,
		"bb_window":          float64(10),
		"slippage_pct":       0.01,
		"stop_loss_mode":     StopModePct,
		"confirmation_ticks": float64(0),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	p := s.Get()
	if !p.Enabled || p.BBWindow != 10 || p.SlippagePct != 0.01 {
		t.Errorf("patch not applied: %+v", p)
	}
	if p.StopLossMode != StopModePct || p.ConfirmationTicks != 0 {
		t.Errorf("patch not applied: %+v", p)
	}
	// Untouched fields keep defaults.
	if p.StdDevBase != 2.5 || p.ATRPeriod != 14 {
		t.Errorf("unpatched fields changed: %+v", p)
	}
}

func TestParamStore_UnknownKeysIgnored(t *testing.T) {
	s := NewParamStore(DefaultParams())
	if err := s.Update(map[string]any{"no_such_key": 42}); err != nil {
		t.Fatalf("unknown key should be ignored, got %v", err)
	}
	if s.Get() != DefaultParams() {
		t.Error("unknown key changed the parameters")
	}
}

func TestParamStore_InvalidValueRejectsWholePatch(t *testing.T) {
	s := NewParamStore(DefaultParams())

	err := s.Update(map[string]any{
		"enabled":   true,
		"bb_window": float64(1), // below minimum
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if s.Get() != DefaultParams() {
		t.Error("failed patch must leave parameters unchanged")
	}
}

func TestParamStore_TypeValidation(t *testing.T) {
	s := NewParamStore(DefaultParams())

	cases := map[string]any{
		"enabled":        "yes",
		"bb_window":      20.5, // not an integer
		"slippage_pct":   "0.02",
		"stop_loss_mode": "TRAILING",
	}
	for key, val := range cases {
		if err := s.Update(map[string]any{key: val}); err == nil {
			t.Errorf("Update(%s=%v) should fail", key, val)
		}
	}
}

func TestParams_HistoryCapacity(t *testing.T) {
	p := DefaultParams()
	p.BBWindow = 20
	p.ATRPeriod = 14
	if got := p.HistoryCapacity(); got != 70 {
		t.Errorf("HistoryCapacity = %d, want 70", got)
	}

	p.ATRPeriod = 100
	if got := p.HistoryCapacity(); got != 150 {
		t.Errorf("HistoryCapacity = %d, want 150", got)
	}
}
