package execution

import (
	"database/sql"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"tradesimv1/internal/portfolio"
)

// Journal persists executed transactions to SQLite for audit and analysis.
// The in-memory ledger stays authoritative; journal rows survive simulator
// resets.
type Journal struct {
	mu sync.Mutex
	db *sql.DB
}

// NewJournal opens (or creates) a SQLite journal database.
func NewJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_sync=NORMAL")
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS transactions (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		side         TEXT NOT NULL,
		symbol       TEXT NOT NULL,
		qty          INTEGER NOT NULL,
		price        REAL NOT NULL,
		total        REAL NOT NULL,
		signal_reason TEXT,
		executed_at  DATETIME NOT NULL,
		created_at   DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_transactions_symbol ON transactions(symbol);
	CREATE INDEX IF NOT EXISTS idx_transactions_executed_at ON transactions(executed_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

// Record appends a transaction to the journal.
func (j *Journal) Record(tx portfolio.Transaction) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	reason := ""
	if tx.Signal != nil {
		reason = tx.Signal.Reason
	}
	_, err := j.db.Exec(
		`INSERT INTO transactions (side, symbol, qty, price, total, signal_reason, executed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.Type, tx.Symbol, tx.Qty, tx.Price, tx.Total, reason,
		tx.Timestamp.Format(time.RFC3339),
	)
	return err
}

// JournalRecord is one row from the transactions table.
type JournalRecord struct {
	ID           int64   `json:"id"`
	Side         string  `json:"side"`
	Symbol       string  `json:"symbol"`
	Qty          int64   `json:"qty"`
	Price        float64 `json:"price"`
	Total        float64 `json:"total"`
	SignalReason string  `json:"signal_reason,omitempty"`
	ExecutedAt   string  `json:"executed_at"`
}

// Recent returns the last limit transactions, newest first.
func (j *Journal) Recent(limit int) ([]JournalRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.db.Query(
		`SELECT id, side, symbol, qty, price, total, signal_reason, executed_at
		 FROM transactions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []JournalRecord
	for rows.Next() {
		var r JournalRecord
		if err := rows.Scan(&r.ID, &r.Side, &r.Symbol, &r.Qty, &r.Price,
			&r.Total, &r.SignalReason, &r.ExecutedAt); err != nil {
			continue
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}
