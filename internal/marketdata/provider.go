// Package marketdata connects the simulator to live market data. The core
// consumes the narrow Provider interface; the SmartAPI implementation
// handles session management and the NSE scrip master.
package marketdata

import (
	"context"
	"errors"

	"tradesimv1/internal/model"
)

// ErrNotFound is returned by Resolve when no instrument matches the name.
var ErrNotFound = errors.New("instrument not found")

// ErrUnavailable is returned by LTP when no price could be fetched.
var ErrUnavailable = errors.New("price unavailable")

// Provider resolves human-entered stock names and serves current prices.
// Both calls are synchronous; failures must surface as errors, never as
// partial data.
type Provider interface {
	// Resolve maps a stock name to a tradeable instrument.
	Resolve(ctx context.Context, name string) (model.Instrument, error)

	// LTP fetches the last traded price for an instrument, in rupees.
	LTP(ctx context.Context, inst model.Instrument) (float64, error)
}
