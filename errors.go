package folio

import "errors"

var (
	// ErrFXUnavailable is the root of every FX resolution failure. It is fatal
	// for the computation that needed the rate.
	ErrFXUnavailable = errors.New("fx unavailable")

	// ErrNoFXRoute is returned when no chain of quoted pairs links two currencies.
	ErrNoFXRoute = errors.New("no fx route")

	// ErrNoFXRate is returned when a pair on the route has no quote at all.
	ErrNoFXRate = errors.New("no fx rate found")

	// ErrUnknownSecurity is returned when a transaction or a request references
	// a security that is not declared in the ledger.
	ErrUnknownSecurity = errors.New("unknown security")

	// ErrUnknownAccount is returned when a transaction or a scope references
	// an account that is not declared in the ledger.
	ErrUnknownAccount = errors.New("unknown account")

	// ErrInvalidTransaction is returned by transaction validation.
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrInvalidCurrency is returned for codes go-money does not know.
	ErrInvalidCurrency = errors.New("invalid currency")
)
