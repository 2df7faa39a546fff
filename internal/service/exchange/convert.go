package exchange

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vovakirdan/ratechat-server/internal/rates"
)

// Conversion is the outcome of converting an amount of foreign currency into the base currency.
type Conversion struct {
	Amount    decimal.Decimal
	Currency  string
	Converted decimal.Decimal
	Base      string
	Rate      decimal.Decimal
	Direction rates.Direction
}

// String renders "<amount> <currency> = <converted> <base>" with two decimals on the result.
func (c Conversion) String() string {
	return fmt.Sprintf("%s %s = %s %s", c.Amount.String(), c.Currency, c.Converted.StringFixed(2), c.Base)
}

// Convert fetches the current table once and converts amount of currency into the base currency
// using the side of the quote selected by dir. ErrRateNotFound means the table has no such pair.
func (s *Service) Convert(ctx context.Context, amount decimal.Decimal, currency string, dir rates.Direction) (Conversion, error) {
	currency = strings.ToUpper(currency)

	table, err := s.source.Current(ctx)
	if err != nil {
		return Conversion{}, fmt.Errorf("fetch current rates: %w", err)
	}

	quote, ok := table.Find(currency, s.base)
	if !ok {
		return Conversion{}, ErrRateNotFound
	}

	rate := dir.Pick(quote)
	return Conversion{
		Amount:    amount,
		Currency:  currency,
		Converted: amount.Mul(rate),
		Base:      s.base,
		Rate:      rate,
		Direction: dir,
	}, nil
}

// ConvertText is Convert rendered for chat. Missing rates and upstream failures become text.
func (s *Service) ConvertText(ctx context.Context, amount decimal.Decimal, currency string, dir rates.Direction) string {
	conv, err := s.Convert(ctx, amount, currency, dir)
	switch {
	case err == nil:
		return conv.String()
	case errors.Is(err, ErrRateNotFound):
		return fmt.Sprintf("Error: %s exchange rate (%s rate) not found", strings.ToUpper(currency), dir)
	default:
		s.log.Warn().Err(err).Str("currency", currency).Stringer("direction", dir).Msg("conversion failed")
		return unavailableText
	}
}
