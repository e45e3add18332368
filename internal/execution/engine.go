// Package execution orchestrates simulated order flow against the single
// ledger: price resolution, signal gating, sizing, slippage fills, and
// solvency/inventory validation, committed as one atomic unit.
package execution

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tradesimv1/internal/history"
	"tradesimv1/internal/indicator"
	"tradesimv1/internal/marketdata"
	"tradesimv1/internal/metrics"
	"tradesimv1/internal/model"
	"tradesimv1/internal/portfolio"
	"tradesimv1/internal/strategy"
)

// EventSink receives committed fills and observed prices for broadcast.
// Implementations must not block.
type EventSink interface {
	PublishFill(tx portfolio.Transaction)
	PublishLTP(symbol string, price float64)
}

// TradeResult is the success payload of a buy or sell.
type TradeResult struct {
	Message   string                    `json:"message"`
	Balance   float64                   `json:"balance"`
	Portfolio map[string]model.Position `json:"portfolio"`
	Signal    *strategy.Signal          `json:"signal"`
}

// BollingerView is the display band block returned by the LTP endpoint.
type BollingerView struct {
	Upper  float64  `json:"upper"`
	Middle float64  `json:"middle"`
	Lower  float64  `json:"lower"`
	ATR    *float64 `json:"atr"`
}

// LTPResult is the payload of a price lookup.
type LTPResult struct {
	Symbol    string           `json:"symbol"`
	LTP       float64          `json:"ltp"`
	Signal    *strategy.Signal `json:"signal"`
	Bollinger *BollingerView   `json:"bollinger"`
}

// Config wires an Engine. Market and Params are required; Journal, Events,
// and Metrics are optional.
type Config struct {
	InitialCash float64
	Market      marketdata.Provider
	Params      *strategy.ParamStore
	Journal     *Journal
	Events      EventSink
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

// Engine executes simulated orders. A single exclusive mutex serializes all
// mutating operations over the shared ledger and price history; market-data
// I/O always happens before the critical section.
type Engine struct {
	mu      sync.RWMutex
	ledger  *portfolio.Ledger
	history *history.Store

	params  *strategy.ParamStore
	market  marketdata.Provider
	journal *Journal
	events  EventSink
	metrics *metrics.Metrics
	log     *slog.Logger

	initialCash float64
}

// NewEngine creates an engine with a fresh ledger and empty price history.
func NewEngine(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		ledger:      portfolio.NewLedger(cfg.InitialCash),
		history:     history.NewStore(),
		params:      cfg.Params,
		market:      cfg.Market,
		journal:     cfg.Journal,
		events:      cfg.Events,
		metrics:     cfg.Metrics,
		log:         logger,
		initialCash: cfg.InitialCash,
	}
}

// Balance returns the current cash balance.
func (e *Engine) Balance() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.Cash()
}

// Buy executes a simulated buy for stock. With autoTrade set (and auto
// trading enabled in the parameters), the detector must signal BUY and the
// requested quantity is replaced by the risk-sized quantity.
func (e *Engine) Buy(ctx context.Context, stock string, qty int64, autoTrade bool) (*TradeResult, error) {
	if qty < 1 {
		return nil, errf(KindInvalidParameter, "Quantity must be positive")
	}
	inst, price, err := e.fetchPrice(ctx, stock)
	if err != nil {
		return nil, err
	}
	p := e.params.Get()

	res, tx, err := e.commitBuy(inst, price, qty, autoTrade, p)
	if err != nil {
		e.metrics.ObserveOrder("buy", "rejected")
		return nil, err
	}
	e.afterCommit("buy", tx, res)
	return res, nil
}

// commitBuy runs the append-gate-size-validate-commit sequence under the
// engine lock.
func (e *Engine) commitBuy(inst model.Instrument, price float64, qty int64, autoTrade bool, p strategy.Params) (*TradeResult, portfolio.Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Price observation is independent of trade outcome: the tick is
	// recorded even if the order is rejected below.
	e.history.Append(inst.Symbol, price, p.HistoryCapacity())

	var sig *strategy.Signal
	if autoTrade && p.AutoTradeEnabled {
		sig = strategy.Evaluate(price, e.history.Snapshot(inst.Symbol), p)
		switch {
		case sig == nil:
			return nil, portfolio.Transaction{}, errf(KindNoSignal, "Insufficient data or no clear signal")
		case sig.Action != strategy.ActionBuy:
			return nil, portfolio.Transaction{}, errf(KindSignalMismatch, "Strategy does not signal BUY at current price")
		}
		e.metrics.ObserveSignal(string(sig.Action))
		qty = strategy.PositionSize(price, sig.ATR, e.ledger.Cash(), p)
	}

	fill := price * (1 + p.SlippagePct)
	cost := fill * float64(qty)
	if cost > e.ledger.Cash() {
		return nil, portfolio.Transaction{}, errf(KindInsufficientBalance, "Insufficient balance")
	}

	tx := e.ledger.ApplyBuy(inst.Symbol, qty, fill, sig)
	res := &TradeResult{
		Message:   fmt.Sprintf("Bought %d shares of %s at ₹%.2f", qty, inst.Symbol, fill),
		Balance:   e.ledger.Cash(),
		Portfolio: e.ledger.Positions(),
		Signal:    sig,
	}
	return res, tx, nil
}

// Sell executes a simulated sell. Auto-trade gating mirrors Buy but requires
// a SELL signal.
func (e *Engine) Sell(ctx context.Context, stock string, qty int64, autoTrade bool) (*TradeResult, error) {
	if qty < 1 {
		return nil, errf(KindInvalidParameter, "Quantity must be positive")
	}
	inst, price, err := e.fetchPrice(ctx, stock)
	if err != nil {
		return nil, err
	}
	p := e.params.Get()

	res, tx, err := e.commitSell(inst, price, qty, autoTrade, p)
	if err != nil {
		e.metrics.ObserveOrder("sell", "rejected")
		return nil, err
	}
	e.afterCommit("sell", tx, res)
	return res, nil
}

func (e *Engine) commitSell(inst model.Instrument, price float64, qty int64, autoTrade bool, p strategy.Params) (*TradeResult, portfolio.Transaction, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.history.Append(inst.Symbol, price, p.HistoryCapacity())

	var sig *strategy.Signal
	if autoTrade && p.AutoTradeEnabled {
		sig = strategy.Evaluate(price, e.history.Snapshot(inst.Symbol), p)
		switch {
		case sig == nil:
			return nil, portfolio.Transaction{}, errf(KindNoSignal, "Insufficient data or no clear signal")
		case sig.Action != strategy.ActionSell:
			return nil, portfolio.Transaction{}, errf(KindSignalMismatch, "Strategy does not signal SELL at current price")
		}
		e.metrics.ObserveSignal(string(sig.Action))
		qty = strategy.PositionSize(price, sig.ATR, e.ledger.Cash(), p)
	}

	pos, ok := e.ledger.Position(inst.Symbol)
	if !ok {
		return nil, portfolio.Transaction{}, errf(KindInsufficientQuantity, "You don't own any shares of %s", inst.Symbol)
	}
	if pos.Qty < qty {
		return nil, portfolio.Transaction{}, errf(KindInsufficientQuantity, "Insufficient quantity. You only have %d shares", pos.Qty)
	}

	fill := price * (1 - p.SlippagePct)
	tx := e.ledger.ApplySell(inst.Symbol, qty, fill, sig)
	res := &TradeResult{
		Message:   fmt.Sprintf("Sold %d shares of %s at ₹%.2f", qty, inst.Symbol, fill),
		Balance:   e.ledger.Cash(),
		Portfolio: e.ledger.Positions(),
		Signal:    sig,
	}
	return res, tx, nil
}

// LTP resolves a stock, fetches its current price, records the tick, and
// returns the price with any live signal and display bands.
func (e *Engine) LTP(ctx context.Context, stock string) (*LTPResult, error) {
	inst, price, err := e.fetchPrice(ctx, stock)
	if err != nil {
		return nil, err
	}
	p := e.params.Get()

	e.mu.Lock()
	e.history.Append(inst.Symbol, price, p.HistoryCapacity())
	prices := e.history.Snapshot(inst.Symbol)
	e.mu.Unlock()

	res := &LTPResult{Symbol: inst.Symbol, LTP: price}
	if p.Enabled {
		res.Signal = strategy.Evaluate(price, prices, p)
		if res.Signal != nil {
			e.metrics.ObserveSignal(string(res.Signal.Action))
		}
	}
	res.Bollinger = bollingerView(prices, p)

	if e.events != nil {
		e.events.PublishLTP(inst.Symbol, price)
	}
	return res, nil
}

// Reset restores the initial cash balance and clears positions, the
// transaction log, and all price histories. It is a full barrier: no
// execution can interleave with it.
func (e *Engine) Reset() float64 {
	e.mu.Lock()
	e.ledger.Reset(e.initialCash)
	e.history.Reset()
	balance := e.ledger.Cash()
	e.mu.Unlock()

	e.metrics.SetLedgerState(balance, 0)
	e.log.Info("simulator reset", slog.Float64("balance", balance))
	return balance
}

// fetchPrice runs the external collaborator calls. It never touches engine
// state, so no lock is held across the I/O.
func (e *Engine) fetchPrice(ctx context.Context, stock string) (model.Instrument, float64, error) {
	inst, err := e.market.Resolve(ctx, stock)
	if err != nil {
		return model.Instrument{}, 0, errf(KindSymbolNotFound, "Stock '%s' not found", stock)
	}

	start := time.Now()
	price, err := e.market.LTP(ctx, inst)
	e.metrics.ObserveLTPFetch(time.Since(start).Seconds(), err == nil)
	if err != nil {
		return model.Instrument{}, 0, errf(KindPriceUnavailable, "Price unavailable for %s", inst.Symbol)
	}
	return inst, price, nil
}

// afterCommit runs post-commit side effects outside the engine lock. The
// journal is best-effort audit: a write failure is logged, never rolled back.
func (e *Engine) afterCommit(side string, tx portfolio.Transaction, res *TradeResult) {
	e.metrics.ObserveOrder(side, "filled")
	e.metrics.SetLedgerState(res.Balance, len(res.Portfolio))

	if e.journal != nil {
		if err := e.journal.Record(tx); err != nil {
			e.log.Warn("journal write failed",
				slog.String("symbol", tx.Symbol), slog.String("err", err.Error()))
		}
	}
	if e.events != nil {
		e.events.PublishFill(tx)
	}
	e.log.Info("order filled",
		slog.String("side", tx.Type),
		slog.String("symbol", tx.Symbol),
		slog.Int64("qty", tx.Qty),
		slog.Float64("price", tx.Price),
		slog.Float64("balance", res.Balance))
}

// bollingerView computes the display band block with the regime-selected
// multiplier, or nil when history is too short.
func bollingerView(prices []float64, p strategy.Params) *BollingerView {
	atr, atrOK := indicator.ATR(prices, p.ATRPeriod)
	mult := strategy.SelectMultiplier(atr, atrOK, p)
	bands, ok := indicator.Bollinger(prices, p.BBWindow, mult)
	if !ok {
		return nil
	}
	v := &BollingerView{Upper: bands.Upper, Middle: bands.Middle, Lower: bands.Lower}
	if atrOK {
		v.ATR = &atr
	}
	return v
}
