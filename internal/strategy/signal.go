package strategy

import "tradesimv1/internal/indicator"

// Action represents a trading action.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
)

// Signal is one entry/exit signal with the band values that produced it.
// ATR is nil when the volatility measure had insufficient history.
type Signal struct {
	Action     Action   `json:"action"`
	Reason     string   `json:"reason"`
	Price      float64  `json:"price"`
	LowerBand  float64  `json:"lower_band"`
	MiddleBand float64  `json:"middle_band"`
	UpperBand  float64  `json:"upper_band"`
	ATR        *float64 `json:"atr"`
}

// SelectMultiplier returns the Bollinger multiplier for the current
// volatility regime: the alternate multiplier when ATR exceeds the switch
// threshold, the base multiplier otherwise. Recomputed on every evaluation.
func SelectMultiplier(atr float64, atrOK bool, p Params) float64 {
	if atrOK && atr > p.StdDevSwitchVolATR {
		return p.StdDevAlt
	}
	return p.StdDevBase
}

// Evaluate checks whether the current price triggers a signal against the
// given price history. It is a pure function of its inputs. prices is the
// stored history snapshot, oldest first, and already contains the current
// tick (the engine appends before evaluating).
func Evaluate(price float64, prices []float64, p Params) *Signal {
	if !p.Enabled || len(prices) < p.BBWindow {
		return nil
	}

	atr, atrOK := indicator.ATR(prices, p.ATRPeriod)
	mult := SelectMultiplier(atr, atrOK, p)

	bands, ok := indicator.Bollinger(prices, p.BBWindow, mult)
	if !ok {
		return nil
	}

	var action Action
	var reason string
	var breach func(float64) bool
	switch {
	case price < bands.Lower:
		action = ActionBuy
		reason = "Price below lower Bollinger Band"
		breach = func(v float64) bool { return v < bands.Lower }
	case price > bands.Upper:
		action = ActionSell
		reason = "Price above upper Bollinger Band"
		breach = func(v float64) bool { return v > bands.Upper }
	default:
		return nil
	}

	// Confirmation: the last k stored samples must all breach the band
	// computed from the current window. k=0 means the single-tick breach
	// is enough.
	if k := p.ConfirmationTicks; k > 0 {
		if len(prices) < k+1 {
			return nil
		}
		for _, v := range prices[len(prices)-k:] {
			if !breach(v) {
				return nil
			}
		}
	}

	sig := &Signal{
		Action:     action,
		Reason:     reason,
		Price:      price,
		LowerBand:  bands.Lower,
		MiddleBand: bands.Middle,
		UpperBand:  bands.Upper,
	}
	if atrOK {
		sig.ATR = &atr
	}
	return sig
}
