package ledger

import "github.com/shopspring/decimal"

// ParseAmount parses user-supplied numeric input into an exact decimal
// amount. Non-numeric, zero and negative values are rejected with
// ErrInvalidAmount: every monetary operation in the ledger requires a
// strictly positive amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Decimal{}, err
	}
	return d, nil
}

// ValidateAmount rejects amounts that are not strictly positive.
func ValidateAmount(d decimal.Decimal) error {
	if d.Cmp(decimal.Zero) <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ValidateLimit rejects negative overdraft limits.
func ValidateLimit(d decimal.Decimal) error {
	if d.Cmp(decimal.Zero) < 0 {
		return ErrInvalidLimit
	}
	return nil
}
