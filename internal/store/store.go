package store

import (
	"context"
	"time"
)

// ExchangeRecord is a journaled "exchange" lookup result.
type ExchangeRecord struct {
	ID        int64
	Body      string
	CreatedAt time.Time
}

// ExchangeLog is an append-only journal of "exchange" lookups.
type ExchangeLog interface {
	// AppendExchange stores one lookup result.
	AppendExchange(ctx context.Context, body string) error

	// Close releases the underlying file or database.
	Close() error
}

// ExchangeLogReader is implemented by journals that can be read back.
type ExchangeLogReader interface {
	// RecentExchanges returns up to limit records, newest first.
	RecentExchanges(ctx context.Context, limit int) ([]ExchangeRecord, error)
}
