// Package card provides a card number value type that never retains the
// full primary account number. Only the last four digits survive
// construction; everything else is discarded immediately.
package card

import "errors"

var ErrInvalidNumber = errors.New("card number must be exactly 16 digits")

// Number holds the last four digits of a validated 16-digit card number.
// The zero value is invalid; construct through ParseNumber.
type Number struct {
	last4 string
}

// ParseNumber validates a raw 16-digit card number and returns a Number
// retaining only the last four digits. The raw input is not kept.
func ParseNumber(raw string) (Number, error) {
	if len(raw) != 16 {
		return Number{}, ErrInvalidNumber
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return Number{}, ErrInvalidNumber
		}
	}
	return Number{last4: raw[12:]}, nil
}

// FromLast4 reconstructs a Number from a stored last-4 fragment.
// Used when loading persisted transactions; the fragment must be 4 digits.
func FromLast4(last4 string) (Number, error) {
	if len(last4) != 4 {
		return Number{}, ErrInvalidNumber
	}
	for _, r := range last4 {
		if r < '0' || r > '9' {
			return Number{}, ErrInvalidNumber
		}
	}
	return Number{last4: last4}, nil
}

// Last4 returns the retained last four digits.
func (n Number) Last4() string {
	return n.last4
}

// Masked renders the number for display: ****-****-****-1234.
func (n Number) Masked() string {
	return "****-****-****-" + n.last4
}

// IsZero reports whether the number was never set.
func (n Number) IsZero() bool {
	return n.last4 == ""
}

// String implements fmt.Stringer with the masked form so the raw digits
// can never leak through formatting.
func (n Number) String() string {
	return n.Masked()
}

// MarshalJSON renders the masked form.
func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(`"` + n.Masked() + `"`), nil
}
