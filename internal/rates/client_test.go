package rates

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

const currentBody = `[
	{"ccy":"EUR","base_ccy":"UAH","buy":"44.10000","sale":"45.10000"},
	{"ccy":"USD","base_ccy":"UAH","buy":"37.00000","sale":"37.50000"}
]`

const archiveBody = `{
	"date":"01.12.2024","bank":"PB","baseCurrency":980,"baseCurrencyLit":"UAH",
	"exchangeRate":[
		{"baseCurrency":"UAH","currency":"AUD","saleRateNB":27.0,"purchaseRateNB":27.0},
		{"baseCurrency":"UAH","currency":"USD","saleRateNB":41.5,"purchaseRateNB":41.5,"saleRate":41.75,"purchaseRate":41.15},
		{"baseCurrency":"UAH","currency":"EUR","saleRateNB":43.9,"purchaseRateNB":43.9,"saleRate":44.2,"purchaseRate":43.6}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient(Options{BaseURL: ts.URL, Timeout: 2 * time.Second}, nil)
}

func TestCurrentParsesTable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/p24api/pubinfo" || r.URL.Query().Get("coursid") != "5" {
			t.Errorf("unexpected request: %s", r.URL.String())
		}
		_, _ = w.Write([]byte(currentBody))
	})

	table, err := client.Current(context.Background())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if len(table) != 2 {
		t.Fatalf("expected 2 rates, got %d", len(table))
	}

	usd, ok := table.Find("USD", "UAH")
	if !ok {
		t.Fatalf("USD/UAH not found in %+v", table)
	}
	if !usd.Buy.Equal(decimal.RequireFromString("37")) || !usd.Sell.Equal(decimal.RequireFromString("37.5")) {
		t.Fatalf("unexpected USD rate: %+v", usd)
	}
	if _, ok := table.Find("USD", "EUR"); ok {
		t.Fatalf("base currency must be part of the match")
	}
}

func TestOnDateRequestsArchiveAndSkipsNationalOnlyEntries(t *testing.T) {
	date := time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/p24api/exchange_rates" || r.URL.Query().Get("date") != "01.12.2024" {
			t.Errorf("unexpected request: %s", r.URL.String())
		}
		_, _ = w.Write([]byte(archiveBody))
	})

	table, err := client.OnDate(context.Background(), date)
	if err != nil {
		t.Fatalf("on date: %v", err)
	}
	if _, ok := table.Lookup("AUD"); ok {
		t.Fatalf("entries without purchase/sale rates must be skipped")
	}
	usd, ok := table.Lookup("USD")
	if !ok {
		t.Fatalf("USD missing from %+v", table)
	}
	if usd.Buy.String() != "41.15" || usd.Sell.String() != "41.75" {
		t.Fatalf("unexpected USD archive rate: %+v", usd)
	}
}

func TestNonOKStatusIsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Current(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected StatusError with 503, got %v", err)
	}
}

func TestMalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"`))
	})

	if _, err := client.Current(context.Background()); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestRequestTimeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(ts.Close)
	t.Cleanup(func() { close(release) })

	client := NewClient(Options{BaseURL: ts.URL, Timeout: 50 * time.Millisecond}, nil)

	_, err := client.Current(context.Background())
	if err == nil || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if errors.Is(err, ErrUnavailable) {
		t.Fatalf("transport failures must not look like status errors")
	}
}

func TestDirectionPick(t *testing.T) {
	r := Rate{Buy: decimal.NewFromInt(1), Sell: decimal.NewFromInt(2)}
	if !Buy.Pick(r).Equal(r.Buy) || !Sell.Pick(r).Equal(r.Sell) {
		t.Fatalf("Pick returned the wrong side")
	}
	if Buy.String() != "buying" || Sell.String() != "selling" {
		t.Fatalf("unexpected direction labels")
	}
	if d, ok := ParseDirection("SELL"); !ok || d != Sell {
		t.Fatalf("ParseDirection(SELL) = %v, %v", d, ok)
	}
	if _, ok := ParseDirection("hold"); ok {
		t.Fatalf("ParseDirection should reject unknown values")
	}
}
