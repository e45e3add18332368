package portfolio

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestLedger_BuyWeightedAverage(t *testing.T) {
	l := NewLedger(100000)

	l.ApplyBuy("TCS", 10, 100, nil)
	l.ApplyBuy("TCS", 10, 200, nil)

	pos, ok := l.Position("TCS")
	if !ok {
		t.Fatal("position missing")
	}
	if pos.Qty != 20 {
		t.Errorf("Qty = %d, want 20", pos.Qty)
	}
	if math.Abs(pos.AvgPrice-150) > eps {
		t.Errorf("AvgPrice = %v, want 150", pos.AvgPrice)
	}
	if math.Abs(l.Cash()-(100000-1000-2000)) > eps {
		t.Errorf("Cash = %v, want 97000", l.Cash())
	}
}

func TestLedger_SellDecrementsAndRemovesAtZero(t *testing.T) {
	l := NewLedger(100000)
	l.ApplyBuy("TCS", 10, 100, nil)

	l.ApplySell("TCS", 4, 110, nil)
	pos, ok := l.Position("TCS")
	if !ok || pos.Qty != 6 {
		t.Fatalf("after partial sell: %+v ok=%v, want qty 6", pos, ok)
	}
	if math.Abs(pos.AvgPrice-100) > eps {
		t.Errorf("selling must not move the average cost, got %v", pos.AvgPrice)
	}

	l.ApplySell("TCS", 6, 110, nil)
	if _, ok := l.Position("TCS"); ok {
		t.Fatal("fully sold position should be removed")
	}
	if math.Abs(l.Cash()-(100000-1000+10*110)) > eps {
		t.Errorf("Cash = %v, want 100100", l.Cash())
	}
}

func TestLedger_TransactionsTail(t *testing.T) {
	l := NewLedger(100000)
	for i := 0; i < 5; i++ {
		l.ApplyBuy("TCS", 1, float64(100+i), nil)
	}

	txs := l.Transactions(3)
	if len(txs) != 3 {
		t.Fatalf("len = %d, want 3", len(txs))
	}
	// Oldest-first within the tail.
	if txs[0].Price != 102 || txs[2].Price != 104 {
		t.Errorf("tail = [%v %v %v], want [102 103 104]", txs[0].Price, txs[1].Price, txs[2].Price)
	}

	if got := l.Transactions(0); len(got) != 5 {
		t.Errorf("limit 0 should return the full log, got %d", len(got))
	}
	if l.TransactionCount() != 5 {
		t.Errorf("TransactionCount = %d, want 5", l.TransactionCount())
	}
}

func TestLedger_PositionsIsACopy(t *testing.T) {
	l := NewLedger(100000)
	l.ApplyBuy("TCS", 10, 100, nil)

	snap := l.Positions()
	delete(snap, "TCS")
	if _, ok := l.Position("TCS"); !ok {
		t.Fatal("mutating the Positions copy changed the ledger")
	}
}

func TestLedger_Reset(t *testing.T) {
	l := NewLedger(100000)
	l.ApplyBuy("TCS", 10, 100, nil)
	l.ApplySell("TCS", 5, 90, nil)

	l.Reset(100000)
	if l.Cash() != 100000 {
		t.Errorf("Cash = %v, want 100000", l.Cash())
	}
	if len(l.Positions()) != 0 || l.TransactionCount() != 0 {
		t.Error("Reset should clear positions and the transaction log")
	}
}
