package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vovakirdan/ratechat-server/internal/rates"
)

var errBrokenPipe = errors.New("broken pipe")

// fakeConn records every frame it is asked to send.
type fakeConn struct {
	mu      sync.Mutex
	sent    []string
	fail    bool
	closed  int
	reasons []string
}

func (c *fakeConn) Send(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errBrokenPipe
	}
	c.sent = append(c.sent, text)
	return nil
}

func (c *fakeConn) Close(reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	c.reasons = append(c.reasons, reason)
	return nil
}

func (c *fakeConn) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}

func (c *fakeConn) closeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// sequentialNames hands out "User 1", "User 2", ...
func sequentialNames() NameFunc {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("User %d", n)
	}
}

// fakeExchange records calls and returns canned texts.
type fakeExchange struct {
	mu       sync.Mutex
	summary  int
	history  []string
	converts []string
}

func (f *fakeExchange) Summary(context.Context) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summary++
	return "USD: buy: 37.00000, sale: 37.50000"
}

func (f *fakeExchange) HistoryReport(_ context.Context, days string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, days)
	return "history " + days
}

func (f *fakeExchange) ConvertText(_ context.Context, amount decimal.Decimal, currency string, dir rates.Direction) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := fmt.Sprintf("%s %s %s", dir, amount.String(), currency)
	f.converts = append(f.converts, call)
	return "converted " + call
}

func (f *fakeExchange) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.summary + len(f.history) + len(f.converts)
}

// fakeJournal is an in-memory store.ExchangeLog.
type fakeJournal struct {
	mu      sync.Mutex
	entries []string
	err     error
}

func (j *fakeJournal) AppendExchange(_ context.Context, body string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	j.entries = append(j.entries, body)
	return nil
}

func (j *fakeJournal) Close() error { return nil }

func mustOnly(t *testing.T, conn *fakeConn, want string) {
	t.Helper()
	got := conn.messages()
	if len(got) != 1 || got[0] != want {
		t.Fatalf("expected exactly [%q], got %q", want, got)
	}
}
