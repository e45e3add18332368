package execution

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a trade rejection for API clients.
type ErrorKind string

const (
	KindSymbolNotFound       ErrorKind = "SymbolNotFound"
	KindPriceUnavailable     ErrorKind = "PriceUnavailable"
	KindInsufficientBalance  ErrorKind = "InsufficientBalance"
	KindInsufficientQuantity ErrorKind = "InsufficientQuantity"
	KindNoSignal             ErrorKind = "NoSignal"
	KindSignalMismatch       ErrorKind = "SignalMismatch"
	KindInvalidParameter     ErrorKind = "InvalidParameter"
)

// TradeError is a structured rejection. Every engine-level failure is one of
// these; nothing else escapes to the API boundary.
type TradeError struct {
	Kind    ErrorKind
	Message string
}

func (e *TradeError) Error() string { return e.Message }

// errf builds a TradeError with a formatted message.
func errf(kind ErrorKind, format string, args ...any) error {
	return &TradeError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the ErrorKind from err, or "" if it is not a TradeError.
func KindOf(err error) ErrorKind {
	var te *TradeError
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}
