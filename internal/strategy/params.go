// Package strategy implements the Bollinger mean-reversion strategy:
// runtime-tunable parameters, signal detection over a price history
// snapshot, and risk-based position sizing.
package strategy

import (
	"fmt"
	"sync"
)

// Stop-loss modes.
const (
	StopModeATR = "ATR" // stop distance = ATR × atr_multiplier
	StopModePct = "PCT" // stop distance = entry price × stop_loss_pct
)

// Params is the validated strategy parameter set. JSON keys match the
// public /api/strategy/params surface.
type Params struct {
	Enabled            bool    `json:"enabled"`
	BBWindow           int     `json:"bb_window"`
	StdDevBase         float64 `json:"std_dev_base"`
	StdDevAlt          float64 `json:"std_dev_alt"`
	StdDevSwitchVolATR float64 `json:"std_dev_switch_vol_atr"`
	SlippagePct        float64 `json:"slippage_pct"`
	RiskPerTradePct    float64 `json:"risk_per_trade_pct"`
	StopLossMode       string  `json:"stop_loss_mode"`
	StopLossPct        float64 `json:"stop_loss_pct"`
	ATRPeriod          int     `json:"atr_period"`
	ATRMultiplier      float64 `json:"atr_multiplier"`
	ConfirmationTicks  int     `json:"confirmation_ticks"`
	AutoTradeEnabled   bool    `json:"auto_trade_enabled"`
}

// DefaultParams returns the stock parameter set.
func DefaultParams() Params {
	return Params{
		Enabled:            false,
		BBWindow:           20,
		StdDevBase:         2.5,
		StdDevAlt:          2.8,
		StdDevSwitchVolATR: 0.5,
		SlippagePct:        0.02,
		RiskPerTradePct:    0.01,
		StopLossMode:       StopModeATR,
		StopLossPct:        0.07,
		ATRPeriod:          14,
		ATRMultiplier:      1.5,
		ConfirmationTicks:  1,
		AutoTradeEnabled:   false,
	}
}

// HistoryCapacity derives the price buffer size for new symbols:
// the largest lookback either indicator needs, plus headroom.
func (p Params) HistoryCapacity() int {
	n := p.BBWindow
	if p.ATRPeriod > n {
		n = p.ATRPeriod
	}
	return n + 50
}

// ParamStore is a concurrency-safe holder for the live parameter set.
type ParamStore struct {
	mu     sync.RWMutex
	params Params
}

// NewParamStore creates a store seeded with p.
func NewParamStore(p Params) *ParamStore {
	return &ParamStore{params: p}
}

// Get returns the current parameter set by value.
func (s *ParamStore) Get() Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// Update merges a partial JSON-decoded patch into the current parameters.
// Unknown keys are ignored. Recognized keys are range-validated; any invalid
// value rejects the entire patch, leaving the store unchanged.
func (s *ParamStore) Update(patch map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.params
	for key, raw := range patch {
		if err := applyParam(&next, key, raw); err != nil {
			return err
		}
	}
	s.params = next
	return nil
}

func applyParam(p *Params, key string, raw any) error {
	switch key {
	case "enabled":
		return setBool(&p.Enabled, key, raw)
	case "auto_trade_enabled":
		return setBool(&p.AutoTradeEnabled, key, raw)
	case "bb_window":
		return setInt(&p.BBWindow, key, raw, 2, 500)
	case "atr_period":
		return setInt(&p.ATRPeriod, key, raw, 1, 500)
	case "confirmation_ticks":
		return setInt(&p.ConfirmationTicks, key, raw, 0, 100)
	case "std_dev_base":
		return setFloat(&p.StdDevBase, key, raw, 0.1, 10)
	case "std_dev_alt":
		return setFloat(&p.StdDevAlt, key, raw, 0.1, 10)
	case "std_dev_switch_vol_atr":
		return setFloat(&p.StdDevSwitchVolATR, key, raw, 0, 1e9)
	case "slippage_pct":
		return setFloat(&p.SlippagePct, key, raw, 0, 0.5)
	case "risk_per_trade_pct":
		return setFloat(&p.RiskPerTradePct, key, raw, 0.0001, 1)
	case "stop_loss_pct":
		return setFloat(&p.StopLossPct, key, raw, 0.0001, 1)
	case "atr_multiplier":
		return setFloat(&p.ATRMultiplier, key, raw, 0.01, 100)
	case "stop_loss_mode":
		v, ok := raw.(string)
		if !ok || (v != StopModeATR && v != StopModePct) {
			return fmt.Errorf("stop_loss_mode must be %q or %q", StopModeATR, StopModePct)
		}
		p.StopLossMode = v
		return nil
	}
	// Unrecognized keys pass through silently.
	return nil
}

func setBool(dst *bool, key string, raw any) error {
	v, ok := raw.(bool)
	if !ok {
		return fmt.Errorf("%s must be a boolean", key)
	}
	*dst = v
	return nil
}

func setInt(dst *int, key string, raw any, lo, hi int) error {
	f, ok := raw.(float64) // encoding/json decodes numbers as float64
	if !ok || f != float64(int(f)) {
		return fmt.Errorf("%s must be an integer", key)
	}
	v := int(f)
	if v < lo || v > hi {
		return fmt.Errorf("%s must be between %d and %d", key, lo, hi)
	}
	*dst = v
	return nil
}

func setFloat(dst *float64, key string, raw any, lo, hi float64) error {
	v, ok := raw.(float64)
	if !ok {
		return fmt.Errorf("%s must be a number", key)
	}
	if v < lo || v > hi {
		return fmt.Errorf("%s must be between %g and %g", key, lo, hi)
	}
	*dst = v
	return nil
}
