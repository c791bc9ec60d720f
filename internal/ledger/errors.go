package ledger

import "errors"

// Domain errors. Handlers translate these into HTTP status codes;
// the service never wraps them in anything the caller cannot errors.Is on.
var (
	// ErrAccountNotFound is returned when no account exists for the
	// requested account number.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidAmount is returned when an amount is not a strictly
	// positive number.
	ErrInvalidAmount = errors.New("amount must be a positive number")

	// ErrInvalidProfile is returned when a required profile field is empty.
	ErrInvalidProfile = errors.New("profile name, address and email are required")

	// ErrInvalidLimit is returned when an overdraft limit is negative, or
	// when lowering the limit would leave the balance below -limit.
	ErrInvalidLimit = errors.New("overdraft limit must be non-negative")

	// ErrOverdraftLimitExceeded is returned when a withdrawal would push
	// the balance below -overdraftLimit.
	ErrOverdraftLimitExceeded = errors.New("withdrawal exceeds overdraft limit")

	// ErrConflict is returned when a concurrent write collision persists
	// after the internal retry budget is exhausted.
	ErrConflict = errors.New("concurrent update conflict")
)
