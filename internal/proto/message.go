// Package proto holds the JSON payloads of the REST mirror of the chat commands.
// The WebSocket side speaks plain text and needs no envelopes.
package proto

// Rate is one quote of the current table.
type Rate struct {
	Currency string `json:"currency"`
	Base     string `json:"base"`
	Buy      string `json:"buy"`
	Sell     string `json:"sell"`
}

// RatesResponse is returned by GET /api/rates.
type RatesResponse struct {
	Rates []Rate `json:"rates"`
}

// HistoryEntry is one day of GET /api/rates/history. Error is set instead of Buy/Sell
// when the day could not be fetched.
type HistoryEntry struct {
	Date  string `json:"date"`
	Buy   string `json:"buy,omitempty"`
	Sell  string `json:"sell,omitempty"`
	Error string `json:"error,omitempty"`
}

// HistoryResponse lists entries oldest first.
type HistoryResponse struct {
	Currency string         `json:"currency"`
	Days     int            `json:"days"`
	Entries  []HistoryEntry `json:"entries"`
}

// ConvertResponse is returned by GET /api/convert.
type ConvertResponse struct {
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Converted string `json:"converted"`
	Base      string `json:"base"`
	Rate      string `json:"rate"`
	Direction string `json:"direction"`
	Text      string `json:"text"`
}

// ExchangeLogEntry is one journaled "exchange" lookup.
type ExchangeLogEntry struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
	TS   int64  `json:"ts"`
}

// ExchangeLogResponse is returned by GET /api/exchange/log.
type ExchangeLogResponse struct {
	Entries []ExchangeLogEntry `json:"entries"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}
