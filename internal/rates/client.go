// Package rates talks to the upstream exchange-rate service (PrivatBank public API shape).
package rates

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// DateLayout is the date format used by the archive endpoint and in rendered history.
const DateLayout = "02.01.2006"

const (
	currentPath = "/p24api/pubinfo?json&exchange&coursid=5"
	archivePath = "/p24api/exchange_rates?json&date="

	defaultTimeout      = 10 * time.Second
	defaultIdlePerHost  = 16
	maxResponseBodySize = 1 << 20
)

var (
	// ErrUnavailable matches any non-200 upstream answer.
	ErrUnavailable = errors.New("rates service unavailable")
	// ErrMalformedResponse is returned when the body is not the documented JSON shape.
	ErrMalformedResponse = errors.New("malformed rates response")
)

// StatusError reports a non-200 upstream status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}

// Is makes errors.Is(err, ErrUnavailable) true for status errors.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnavailable
}

// Options configure a Client.
type Options struct {
	BaseURL             string
	Timeout             time.Duration
	MaxIdleConnsPerHost int
	// HTTPClient overrides the pooled client built from the options above.
	HTTPClient *http.Client
}

// Client issues single GET calls against the rates service.
// It owns one pooled *http.Client that is reused by every call.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	log     *zerolog.Logger
}

// NewClient builds a client with a shared keep-alive transport.
func NewClient(opts Options, logger *zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		idle := opts.MaxIdleConnsPerHost
		if idle <= 0 {
			idle = defaultIdlePerHost
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.MaxIdleConns = idle * 2
		transport.MaxIdleConnsPerHost = idle
		httpClient = &http.Client{Transport: transport}
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		timeout: timeout,
		http:    httpClient,
		log:     logger,
	}
}

// Current fetches today's cash rates.
func (c *Client) Current(ctx context.Context) (Table, error) {
	body, err := c.get(ctx, c.baseURL+currentPath)
	if err != nil {
		return nil, err
	}
	return parseCurrent(body)
}

// OnDate fetches the archived rates for a single calendar day.
func (c *Client) OnDate(ctx context.Context, date time.Time) (Table, error) {
	body, err := c.get(ctx, c.baseURL+archivePath+url.QueryEscape(date.Format(DateLayout)))
	if err != nil {
		return nil, err
	}
	return parseArchive(body)
}

// CloseIdleConnections releases pooled keep-alive connections.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}

func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("url", target).Msg("rates request failed")
		return nil, fmt.Errorf("request rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBodySize))
		c.log.Warn().Int("status", resp.StatusCode).Str("url", target).Msg("rates request returned error status")
		return nil, &StatusError{URL: target, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("read rates body: %w", err)
	}
	return body, nil
}

// parseCurrent reads a flat list of {ccy, base_ccy, buy, sale}.
func parseCurrent(body []byte) (Table, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrMalformedResponse
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsArray() {
		return nil, ErrMalformedResponse
	}

	table := make(Table, 0, len(doc.Array()))
	for _, item := range doc.Array() {
		buy, okBuy := decimalFrom(item.Get("buy"))
		sell, okSell := decimalFrom(item.Get("sale"))
		if !okBuy || !okSell {
			continue
		}
		table = append(table, Rate{
			Currency: item.Get("ccy").String(),
			Base:     item.Get("base_ccy").String(),
			Buy:      buy,
			Sell:     sell,
		})
	}
	return table, nil
}

// parseArchive reads {"exchangeRate": [{currency, baseCurrency, purchaseRate, saleRate}]}.
// Entries that only carry the national bank rate have no purchase/sale pair and are skipped.
func parseArchive(body []byte) (Table, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrMalformedResponse
	}
	list := gjson.GetBytes(body, "exchangeRate")
	if list.Exists() && !list.IsArray() {
		return nil, ErrMalformedResponse
	}

	entries := list.Array()
	table := make(Table, 0, len(entries))
	for _, item := range entries {
		buy, okBuy := decimalFrom(item.Get("purchaseRate"))
		sell, okSell := decimalFrom(item.Get("saleRate"))
		if !okBuy || !okSell {
			continue
		}
		table = append(table, Rate{
			Currency: item.Get("currency").String(),
			Base:     item.Get("baseCurrency").String(),
			Buy:      buy,
			Sell:     sell,
		})
	}
	return table, nil
}

// decimalFrom accepts both quoted ("41.05000") and bare (41.05) numbers.
func decimalFrom(res gjson.Result) (decimal.Decimal, bool) {
	var raw string
	switch res.Type {
	case gjson.String:
		raw = res.Str
	case gjson.Number:
		raw = res.Raw
	default:
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
