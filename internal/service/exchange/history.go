package exchange

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/ratechat-server/internal/rates"
)

// HistoryEntry is one calendar day of a history result.
// Exactly one of Rate and Err is set.
type HistoryEntry struct {
	Date     time.Time
	Currency string
	Rate     *rates.Rate
	Err      error
}

// Available reports whether the day carries a rate.
func (e HistoryEntry) Available() bool {
	return e.Err == nil && e.Rate != nil
}

// Reason is the short placeholder shown instead of a missing rate.
func (e HistoryEntry) Reason() string {
	switch {
	case e.Available():
		return ""
	case errors.Is(e.Err, ErrRateNotFound):
		return fmt.Sprintf("No %s rate available", e.Currency)
	case errors.Is(e.Err, rates.ErrUnavailable), errors.Is(e.Err, rates.ErrMalformedResponse):
		return "No data available"
	default:
		return fmt.Sprintf("Connection error - %v", e.Err)
	}
}

// String renders the entry the way chat clients receive it.
func (e HistoryEntry) String() string {
	date := e.Date.Format(rates.DateLayout)
	if !e.Available() {
		return fmt.Sprintf("%s: %s", date, e.Reason())
	}
	return fmt.Sprintf("%s:\n%s: buy: %s, sale: %s\n",
		date, e.Currency, e.Rate.Buy.StringFixed(5), e.Rate.Sell.StringFixed(5))
}

// ParseDays validates a day-count token: digits only, within [MinHistoryDays, MaxHistoryDays].
func ParseDays(token string) (int, error) {
	if token == "" || strings.TrimLeft(token, "0123456789") != "" {
		return 0, ErrDaysNotNumber
	}
	days, err := strconv.Atoi(token)
	if err != nil {
		// only overflow can get here
		return 0, ErrDaysOutOfRange
	}
	if days < MinHistoryDays || days > MaxHistoryDays {
		return 0, ErrDaysOutOfRange
	}
	return days, nil
}

// HistoryDates returns the days covered by a window of n days ending yesterday, oldest first.
func HistoryDates(today time.Time, n int) []time.Time {
	y, m, d := today.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, today.Location())

	dates := make([]time.Time, 0, n)
	for i := n; i >= 1; i-- {
		dates = append(dates, midnight.AddDate(0, 0, -i))
	}
	return dates
}

// History looks up currency for each of the last days days concurrently.
// The result is ordered oldest first no matter which lookup finishes first,
// and a failed day becomes a placeholder entry instead of failing the whole call.
func (s *Service) History(ctx context.Context, currency string, days int) ([]HistoryEntry, error) {
	if days < MinHistoryDays || days > MaxHistoryDays {
		return nil, ErrDaysOutOfRange
	}
	currency = strings.ToUpper(currency)

	dates := HistoryDates(s.now(), days)
	entries := make([]HistoryEntry, len(dates))

	var g errgroup.Group
	if s.limit > 0 {
		g.SetLimit(s.limit)
	}
	for i, date := range dates {
		i, date := i, date
		g.Go(func() error {
			entries[i] = s.lookupDay(ctx, currency, date)
			return nil
		})
	}
	_ = g.Wait()

	return entries, nil
}

func (s *Service) lookupDay(ctx context.Context, currency string, date time.Time) HistoryEntry {
	entry := HistoryEntry{Date: date, Currency: currency}

	table, err := s.source.OnDate(ctx, date)
	if err != nil {
		s.log.Debug().Err(err).Str("currency", currency).Str("date", date.Format(rates.DateLayout)).Msg("history lookup failed")
		entry.Err = err
		return entry
	}

	rate, ok := table.Lookup(currency)
	if !ok {
		entry.Err = ErrRateNotFound
		return entry
	}
	entry.Rate = &rate
	return entry
}

// HistoryReport validates daysToken and renders the history of every configured currency,
// one block per currency, each block oldest to newest.
func (s *Service) HistoryReport(ctx context.Context, daysToken string) string {
	days, err := ParseDays(daysToken)
	if err != nil {
		return daysErrorText(err)
	}

	results := make([][]HistoryEntry, len(s.currencies))
	var g errgroup.Group
	for i, cur := range s.currencies {
		i, cur := i, cur
		g.Go(func() error {
			entries, err := s.History(ctx, cur, days)
			results[i] = entries
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return daysErrorText(err)
	}

	blocks := make([]string, 0, len(s.currencies))
	for i, cur := range s.currencies {
		lines := make([]string, 0, len(results[i]))
		for _, entry := range results[i] {
			lines = append(lines, entry.String())
		}
		blocks = append(blocks, fmt.Sprintf("%s Exchange History:\n%s", cur, strings.Join(lines, "\n")))
	}
	return strings.Join(blocks, "\n\n")
}

// daysErrorText maps a ParseDays/History error onto the text shown to users.
func daysErrorText(err error) string {
	switch {
	case errors.Is(err, ErrDaysNotNumber):
		return "Invalid number of days"
	case errors.Is(err, ErrDaysOutOfRange):
		return fmt.Sprintf("Number of days must be between %d and %d", MinHistoryDays, MaxHistoryDays)
	default:
		return unavailableText
	}
}
