package strategy

// PositionSize converts an entry price and volatility measure into a
// risk-bounded share quantity. cashBalance is the ledger's balance at
// sizing time, so sizes shrink as the account depletes.
//
// Stop distance is ATR-based when the mode is ATR and a value is available,
// otherwise a fixed percentage of the entry price. The risk budget per
// trade is cashBalance × risk_per_trade_pct.
func PositionSize(entryPrice float64, atr *float64, cashBalance float64, p Params) int64 {
	var stopDist float64
	if p.StopLossMode == StopModeATR && atr != nil {
		stopDist = *atr * p.ATRMultiplier
	} else {
		stopDist = entryPrice * p.StopLossPct
	}
	if stopDist <= 0 {
		return 1
	}

	riskAmt := cashBalance * p.RiskPerTradePct
	qty := int64(riskAmt / stopDist)
	if qty < 1 {
		qty = 1
	}
	return qty
}
