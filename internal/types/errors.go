package types

import "errors"

// Sentinel errors for the wing strategy bot.
var (
	// Configuration errors - fatal at startup.
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrInvalidScale      = errors.New("calibration scale must be positive")
	ErrNoBracketPair     = errors.New("no adjacent strikes bracket the price")
	ErrMissingFarLeg     = errors.New("no strike available for the outer leg")
	ErrMissingInstrument = errors.New("no instrument for resolved strike")

	// Reconciliation errors.
	ErrNoReports = errors.New("no execution reports to evaluate")

	// Execution errors.
	ErrFillShortfall = errors.New("retry budget exhausted before full fill")

	// Feed errors.
	ErrNoTick = errors.New("no market tick observed yet")

	// Gateway errors.
	ErrNotConnected = errors.New("gateway not connected")
	ErrGatewayBusy  = errors.New("another order is outstanding")
)
