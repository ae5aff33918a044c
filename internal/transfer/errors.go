package transfer

import "errors"

// The four error kinds the engine can surface. All are client-input
// errors: the caller can correct the request and retry. Store and rate
// lookup faults (connectivity etc.) propagate as opaque errors and are
// never retried here.
var (
	ErrSameAccount           = errors.New("cannot transfer to the same account")
	ErrAccountNotFound       = errors.New("account not found")
	ErrInsufficientFunds     = errors.New("insufficient funds (including fee)")
	ErrUnsupportedConversion = errors.New("unsupported currency conversion")
)
