package execution

import (
	"path/filepath"
	"testing"
	"time"

	"tradesimv1/internal/portfolio"
	"tradesimv1/internal/strategy"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := NewJournal(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("NewJournal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_RecordAndRecent(t *testing.T) {
	j := newTestJournal(t)

	txs := []portfolio.Transaction{
		{Type: "BUY", Symbol: "TCS", Qty: 10, Price: 102, Total: 1020, Timestamp: time.Now().UTC()},
		{Type: "SELL", Symbol: "TCS", Qty: 4, Price: 98, Total: 392, Timestamp: time.Now().UTC(),
			Signal: &strategy.Signal{Action: strategy.ActionSell, Reason: "Price above upper Bollinger Band"}},
	}
	for _, tx := range txs {
		if err := j.Record(tx); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := j.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// Newest first.
	if got[0].Side != "SELL" || got[1].Side != "BUY" {
		t.Errorf("order = [%s %s], want [SELL BUY]", got[0].Side, got[1].Side)
	}
	if got[0].SignalReason != "Price above upper Bollinger Band" {
		t.Errorf("SignalReason = %q", got[0].SignalReason)
	}
	if got[1].Qty != 10 || got[1].Total != 1020 {
		t.Errorf("row = %+v", got[1])
	}
}

func TestJournal_RecentLimit(t *testing.T) {
	j := newTestJournal(t)

	for i := 0; i < 5; i++ {
		tx := portfolio.Transaction{
			Type: "BUY", Symbol: "TCS", Qty: int64(i + 1),
			Price: 100, Total: 100, Timestamp: time.Now().UTC(),
		}
		if err := j.Record(tx); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := j.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Qty != 5 || got[1].Qty != 4 {
		t.Errorf("rows = [%d %d], want newest first [5 4]", got[0].Qty, got[1].Qty)
	}
}

func TestJournal_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := NewJournal(path)
	if err != nil {
		t.Fatalf("NewJournal: %v", err)
	}
	tx := portfolio.Transaction{Type: "BUY", Symbol: "INFY", Qty: 1, Price: 50, Total: 50, Timestamp: time.Now().UTC()}
	if err := j.Record(tx); err != nil {
		t.Fatalf("Record: %v", err)
	}
	j.Close()

	j2, err := NewJournal(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer j2.Close()

	got, err := j2.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 || got[0].Symbol != "INFY" {
		t.Fatalf("rows after reopen = %+v", got)
	}
}
