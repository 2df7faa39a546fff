// Package exchange turns raw rate tables into the answers served to chat clients:
// current summaries, multi-day histories and buy/sell conversions.
package exchange

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/ratechat-server/internal/rates"
)

// Common errors for exchange operations.
var (
	ErrRateNotFound   = errors.New("exchange rate not found")
	ErrDaysNotNumber  = errors.New("days is not a number")
	ErrDaysOutOfRange = errors.New("days out of range")
)

// Limits on the history window.
const (
	MinHistoryDays = 1
	MaxHistoryDays = 10
)

// unavailableText is what clients see when the upstream table cannot be fetched at all.
const unavailableText = "Error: exchange rates are unavailable, try again later"

// RateSource is the upstream the service reads from. *rates.Client implements it.
type RateSource interface {
	Current(ctx context.Context) (rates.Table, error)
	OnDate(ctx context.Context, date time.Time) (rates.Table, error)
}

// Options tune the service.
type Options struct {
	BaseCurrency string
	Currencies   []string
	// MaxConcurrentLookups bounds history fan-out; zero means no bound.
	MaxConcurrentLookups int
	// Now overrides the clock, mostly for tests.
	Now func() time.Time
}

// Service provides exchange-rate business logic.
type Service struct {
	source     RateSource
	base       string
	currencies []string
	limit      int
	now        func() time.Time
	log        *zerolog.Logger
}

// New creates a Service reading from source.
func New(source RateSource, opts Options, logger *zerolog.Logger) *Service {
	base := strings.ToUpper(opts.BaseCurrency)
	if base == "" {
		base = "UAH"
	}

	currencies := make([]string, 0, len(opts.Currencies))
	for _, c := range opts.Currencies {
		currencies = append(currencies, strings.ToUpper(c))
	}
	if len(currencies) == 0 {
		currencies = []string{"USD", "EUR"}
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Service{
		source:     source,
		base:       base,
		currencies: currencies,
		limit:      opts.MaxConcurrentLookups,
		now:        now,
		log:        logger,
	}
}

// BaseCurrency returns the local currency all quotes are matched against.
func (s *Service) BaseCurrency() string {
	return s.base
}

// Currencies returns the currencies covered by summaries and history reports.
func (s *Service) Currencies() []string {
	return append([]string(nil), s.currencies...)
}

// Snapshot returns the current rate table as-is.
func (s *Service) Snapshot(ctx context.Context) (rates.Table, error) {
	return s.source.Current(ctx)
}
