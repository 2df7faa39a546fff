package exchange

import (
	"context"
	"fmt"
	"strings"
)

// Summary renders today's buy/sell quotes for every configured currency,
// one line each. A currency missing from the table gets an error line of its own.
func (s *Service) Summary(ctx context.Context) string {
	table, err := s.source.Current(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("fetch current rates for summary")
		return unavailableText
	}

	lines := make([]string, 0, len(s.currencies))
	for _, cur := range s.currencies {
		rate, ok := table.Find(cur, s.base)
		if !ok {
			lines = append(lines, fmt.Sprintf("Error: %s exchange rate not found", cur))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: buy: %s, sale: %s", cur, rate.Buy.StringFixed(5), rate.Sell.StringFixed(5)))
	}
	return strings.Join(lines, "\n")
}
