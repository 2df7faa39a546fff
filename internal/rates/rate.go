package rates

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Rate is a buy/sell quote for one currency against a base currency.
type Rate struct {
	Currency string
	Base     string
	Buy      decimal.Decimal
	Sell     decimal.Decimal
}

// Table is a set of quotes as returned by a single upstream call.
type Table []Rate

// Find returns the quote for currency against base.
func (t Table) Find(currency, base string) (Rate, bool) {
	for _, r := range t {
		if strings.EqualFold(r.Currency, currency) && strings.EqualFold(r.Base, base) {
			return r, true
		}
	}
	return Rate{}, false
}

// Lookup returns the first quote for currency regardless of base.
func (t Table) Lookup(currency string) (Rate, bool) {
	for _, r := range t {
		if strings.EqualFold(r.Currency, currency) {
			return r, true
		}
	}
	return Rate{}, false
}

// Bounds on amounts accepted for conversion. Larger exponents would make rendering
// the result allocate in proportion to the exponent.
const (
	MaxAmountExponent = 18
	MaxAmountDigits   = 30
)

// ErrInvalidAmount is returned by ParseAmount.
var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount parses a non-negative decimal amount with at most MaxAmountDigits digits
// and an exponent within ±MaxAmountExponent.
func ParseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil || amount.IsNegative() {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	exp := amount.Exponent()
	if exp > MaxAmountExponent || exp < -MaxAmountExponent || amount.NumDigits() > MaxAmountDigits {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return amount, nil
}

// Direction selects which side of a quote applies to a conversion.
type Direction int

const (
	// Buy uses the bank's buying rate.
	Buy Direction = iota
	// Sell uses the bank's selling rate.
	Sell
)

// Pick returns the side of r matching the direction.
func (d Direction) Pick(r Rate) decimal.Decimal {
	if d == Sell {
		return r.Sell
	}
	return r.Buy
}

// String renders the direction as it appears in user-facing text ("buying", "selling").
func (d Direction) String() string {
	if d == Sell {
		return "selling"
	}
	return "buying"
}

// ParseDirection maps "buy"/"sell" onto a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(s) {
	case "buy":
		return Buy, true
	case "sell":
		return Sell, true
	default:
		return Buy, false
	}
}
