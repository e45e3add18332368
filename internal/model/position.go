package model

// Position is an open simulated holding. A position exists only while
// Qty > 0; the ledger removes the entry the moment it is fully sold.
type Position struct {
	Qty      int64   `json:"qty"`
	AvgPrice float64 `json:"avg_price"` // weighted-average cost of unsold buy fills, rupees
}

// Invested returns the cost basis of the position in rupees.
func (p Position) Invested() float64 {
	return float64(p.Qty) * p.AvgPrice
}
