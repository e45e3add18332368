package model

// Instrument represents a tradeable instrument resolved from the scrip master.
type Instrument struct {
	Symbol   string `json:"symbol"` // trading symbol, e.g. "SBIN-EQ"
	Token    string `json:"token"`  // broker instrument token
	Exchange string `json:"exchange"`
}

// Key returns a unique key for this instrument: "exchange:token".
func (i *Instrument) Key() string {
	return i.Exchange + ":" + i.Token
}
