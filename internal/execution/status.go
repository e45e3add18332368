package execution

import (
	"context"

	"tradesimv1/internal/portfolio"
	"tradesimv1/internal/strategy"
)

// statusTransactionTail is the number of recent transactions included in a
// status report.
const statusTransactionTail = 50

// PositionStatus is one portfolio line with live P&L.
type PositionStatus struct {
	Qty          int64   `json:"qty"`
	AvgPrice     float64 `json:"avg_price"`
	CurrentPrice float64 `json:"current_price"`
	Invested     float64 `json:"invested"`
	CurrentValue float64 `json:"current_value"`
	PnL          float64 `json:"pnl"`
	PnLPct       float64 `json:"pnl_pct"`
}

// StatusReport is the full simulator snapshot with live P&L.
type StatusReport struct {
	Balance           float64                    `json:"balance"`
	Portfolio         map[string]PositionStatus  `json:"portfolio"`
	Transactions      []portfolio.Transaction    `json:"transactions"`
	TotalInvested     float64                    `json:"total_invested"`
	TotalCurrentValue float64                    `json:"total_current_value"`
	OverallPnL        float64                    `json:"overall_pnl"`
	OverallPnLPct     float64                    `json:"overall_pnl_pct"`
	StrategyParams    strategy.Params            `json:"strategy_params"`
}

// Status derives live P&L by combining the ledger snapshot with current
// prices. A position whose price cannot be fetched falls back to its average
// cost (zero P&L for that line) rather than failing the whole report.
func (e *Engine) Status(ctx context.Context) *StatusReport {
	e.mu.RLock()
	balance := e.ledger.Cash()
	positions := e.ledger.Positions()
	txs := e.ledger.Transactions(statusTransactionTail)
	e.mu.RUnlock()

	report := &StatusReport{
		Balance:        balance,
		Portfolio:      make(map[string]PositionStatus, len(positions)),
		Transactions:   txs,
		StrategyParams: e.params.Get(),
	}

	for symbol, pos := range positions {
		invested := pos.Invested()

		current := pos.AvgPrice
		if inst, err := e.market.Resolve(ctx, symbol); err == nil {
			if ltp, err := e.market.LTP(ctx, inst); err == nil {
				current = ltp
			}
		}

		value := float64(pos.Qty) * current
		pnl := value - invested
		pct := 0.0
		if invested > 0 {
			pct = pnl / invested * 100
		}

		report.Portfolio[symbol] = PositionStatus{
			Qty:          pos.Qty,
			AvgPrice:     pos.AvgPrice,
			CurrentPrice: current,
			Invested:     invested,
			CurrentValue: value,
			PnL:          pnl,
			PnLPct:       pct,
		}
		report.TotalInvested += invested
		report.TotalCurrentValue += value
	}

	report.OverallPnL = report.TotalCurrentValue - report.TotalInvested
	if report.TotalInvested > 0 {
		report.OverallPnLPct = report.OverallPnL / report.TotalInvested * 100
	}
	return report
}
