package signal

import "errors"

// Error taxonomy shared by every backtest component. Callers match with errors.Is.
var (
	// ErrConfiguration marks invalid parameters or an unusable training set. Fatal.
	ErrConfiguration = errors.New("configuration error")
	// ErrNumeric marks a division by zero or an undefined value reaching arithmetic.
	ErrNumeric = errors.New("numeric error")
	// ErrAlignment marks price and signal series that do not line up.
	ErrAlignment = errors.New("data alignment error")
)
