// Package portfolio owns the simulator's mutable trading state: the cash
// balance, open positions, and the append-only transaction log.
//
// The Ledger performs no locking of its own. All mutation flows through the
// execution engine, which serializes access; handing the lock to the engine
// keeps the append-evaluate-size-validate-commit sequence atomic.
package portfolio

import (
	"time"

	"tradesimv1/internal/model"
	"tradesimv1/internal/strategy"
)

// Transaction is one immutable fill record, appended in chronological order.
type Transaction struct {
	Type      string           `json:"type"` // BUY or SELL
	Symbol    string           `json:"symbol"`
	Qty       int64            `json:"qty"`
	Price     float64          `json:"price"` // fill price after slippage, rupees
	Total     float64          `json:"total"` // Qty × Price
	Timestamp time.Time        `json:"timestamp"`
	Signal    *strategy.Signal `json:"strategy_signal,omitempty"`
}

// Ledger tracks cash, positions, and transactions for the single portfolio.
type Ledger struct {
	cash         float64
	positions    map[string]model.Position
	transactions []Transaction
}

// NewLedger creates a ledger with the given starting cash.
func NewLedger(initialCash float64) *Ledger {
	return &Ledger{
		cash:      initialCash,
		positions: make(map[string]model.Position),
	}
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() float64 { return l.cash }

// Position returns the open position for symbol, if any.
func (l *Ledger) Position(symbol string) (model.Position, bool) {
	p, ok := l.positions[symbol]
	return p, ok
}

// Positions returns a copy of the open positions map.
func (l *Ledger) Positions() map[string]model.Position {
	out := make(map[string]model.Position, len(l.positions))
	for sym, p := range l.positions {
		out[sym] = p
	}
	return out
}

// Transactions returns a copy of the most recent limit transactions,
// oldest first. limit <= 0 returns the full log.
func (l *Ledger) Transactions(limit int) []Transaction {
	txs := l.transactions
	if limit > 0 && len(txs) > limit {
		txs = txs[len(txs)-limit:]
	}
	out := make([]Transaction, len(txs))
	copy(out, txs)
	return out
}

// TransactionCount returns the size of the transaction log.
func (l *Ledger) TransactionCount() int { return len(l.transactions) }

// ApplyBuy commits a validated buy: debits cash, folds the fill into the
// position's weighted-average cost, and appends the transaction. The caller
// must have already checked solvency.
func (l *Ledger) ApplyBuy(symbol string, qty int64, fillPrice float64, sig *strategy.Signal) Transaction {
	cost := fillPrice * float64(qty)
	l.cash -= cost

	if pos, ok := l.positions[symbol]; ok {
		newQty := pos.Qty + qty
		newAvg := (float64(pos.Qty)*pos.AvgPrice + float64(qty)*fillPrice) / float64(newQty)
		l.positions[symbol] = model.Position{Qty: newQty, AvgPrice: newAvg}
	} else {
		l.positions[symbol] = model.Position{Qty: qty, AvgPrice: fillPrice}
	}

	tx := Transaction{
		Type:      string(strategy.ActionBuy),
		Symbol:    symbol,
		Qty:       qty,
		Price:     fillPrice,
		Total:     cost,
		Timestamp: time.Now().UTC(),
		Signal:    sig,
	}
	l.transactions = append(l.transactions, tx)
	return tx
}

// ApplySell commits a validated sell: credits the proceeds, decrements the
// position (removing it entirely at zero), and appends the transaction. The
// caller must have already checked inventory.
func (l *Ledger) ApplySell(symbol string, qty int64, fillPrice float64, sig *strategy.Signal) Transaction {
	proceeds := fillPrice * float64(qty)
	l.cash += proceeds

	pos := l.positions[symbol]
	pos.Qty -= qty
	if pos.Qty == 0 {
		delete(l.positions, symbol)
	} else {
		l.positions[symbol] = pos
	}

	tx := Transaction{
		Type:      string(strategy.ActionSell),
		Symbol:    symbol,
		Qty:       qty,
		Price:     fillPrice,
		Total:     proceeds,
		Timestamp: time.Now().UTC(),
		Signal:    sig,
	}
	l.transactions = append(l.transactions, tx)
	return tx
}

// Reset restores the initial cash balance and clears positions and the
// transaction log.
func (l *Ledger) Reset(initialCash float64) {
	l.cash = initialCash
	l.positions = make(map[string]model.Position)
	l.transactions = nil
}
