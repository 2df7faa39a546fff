package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/ratechat-server/internal/proto"
	"github.com/vovakirdan/ratechat-server/internal/rates"
	"github.com/vovakirdan/ratechat-server/internal/service/exchange"
	"github.com/vovakirdan/ratechat-server/internal/store"
)

const (
	defaultLogLimit = 20
	maxLogLimit     = 200
)

// RatesHandlers serves the REST mirror of the chat commands.
type RatesHandlers struct {
	exchange *exchange.Service
	journal  store.ExchangeLogReader
	log      *zerolog.Logger
}

// NewRatesHandlers creates rate handlers. journal may be nil when the configured
// sink cannot be read back.
func NewRatesHandlers(ex *exchange.Service, journal store.ExchangeLogReader, logger *zerolog.Logger) *RatesHandlers {
	return &RatesHandlers{
		exchange: ex,
		journal:  journal,
		log:      logger,
	}
}

// HistoryRequest holds query parameters of the history endpoint.
type HistoryRequest struct {
	Currency string `form:"currency" binding:"required,alpha,len=3"`
	Days     string `form:"days" binding:"required"`
}

// ConvertRequest holds query parameters of the convert endpoint.
type ConvertRequest struct {
	Direction string `form:"direction" binding:"required,oneof=buy sell"`
	Amount    string `form:"amount" binding:"required"`
	Currency  string `form:"currency" binding:"required,alpha,len=3"`
}

// LogRequest holds query parameters of the exchange-log endpoint.
type LogRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

// Current returns the current rate table.
// GET /api/rates
func (h *RatesHandlers) Current(c *gin.Context) {
	table, err := h.exchange.Snapshot(c.Request.Context())
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to fetch current rates")
		c.JSON(http.StatusBadGateway, proto.ErrorResponse{Error: "exchange rates are unavailable"})
		return
	}

	resp := proto.RatesResponse{Rates: make([]proto.Rate, 0, len(table))}
	for _, r := range table {
		resp.Rates = append(resp.Rates, rateToProto(r))
	}
	c.JSON(http.StatusOK, resp)
}

// History returns one entry per day for a currency, oldest first.
// GET /api/rates/history?currency=USD&days=5
func (h *RatesHandlers) History(c *gin.Context) {
	var req HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, proto.ErrorResponse{Error: "invalid query parameters"})
		return
	}

	days, err := exchange.ParseDays(req.Days)
	if err != nil {
		c.JSON(http.StatusBadRequest, proto.ErrorResponse{Error: err.Error()})
		return
	}

	entries, err := h.exchange.History(c.Request.Context(), req.Currency, days)
	if err != nil {
		c.JSON(http.StatusBadRequest, proto.ErrorResponse{Error: err.Error()})
		return
	}

	resp := proto.HistoryResponse{
		Currency: strings.ToUpper(req.Currency),
		Days:     days,
		Entries:  make([]proto.HistoryEntry, 0, len(entries)),
	}
	for _, e := range entries {
		item := proto.HistoryEntry{Date: e.Date.Format(rates.DateLayout)}
		if e.Available() {
			item.Buy = e.Rate.Buy.String()
			item.Sell = e.Rate.Sell.String()
		} else {
			item.Error = e.Reason()
		}
		resp.Entries = append(resp.Entries, item)
	}
	c.JSON(http.StatusOK, resp)
}

// Convert converts an amount of foreign currency into the base currency.
// GET /api/convert?direction=buy&amount=100&currency=USD
func (h *RatesHandlers) Convert(c *gin.Context) {
	var req ConvertRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, proto.ErrorResponse{Error: "invalid query parameters"})
		return
	}

	amount, err := rates.ParseAmount(req.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, proto.ErrorResponse{Error: "invalid amount"})
		return
	}
	dir, _ := rates.ParseDirection(req.Direction)

	conv, err := h.exchange.Convert(c.Request.Context(), amount, req.Currency, dir)
	if err != nil {
		if errors.Is(err, exchange.ErrRateNotFound) {
			c.JSON(http.StatusNotFound, proto.ErrorResponse{Error: "exchange rate not found"})
			return
		}
		h.log.Warn().Err(err).Str("currency", req.Currency).Msg("conversion failed")
		c.JSON(http.StatusBadGateway, proto.ErrorResponse{Error: "exchange rates are unavailable"})
		return
	}

	c.JSON(http.StatusOK, proto.ConvertResponse{
		Amount:    conv.Amount.String(),
		Currency:  conv.Currency,
		Converted: conv.Converted.StringFixed(2),
		Base:      conv.Base,
		Rate:      conv.Rate.String(),
		Direction: conv.Direction.String(),
		Text:      conv.String(),
	})
}

// ExchangeLog returns the most recent journaled "exchange" lookups.
// GET /api/exchange/log?limit=20
func (h *RatesHandlers) ExchangeLog(c *gin.Context) {
	if h.journal == nil {
		c.JSON(http.StatusNotImplemented, proto.ErrorResponse{Error: "exchange log is not readable"})
		return
	}

	var req LogRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, proto.ErrorResponse{Error: "invalid query parameters"})
		return
	}
	limit := req.Limit
	if limit == 0 {
		limit = defaultLogLimit
	}
	limit = min(limit, maxLogLimit)

	records, err := h.journal.RecentExchanges(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to read exchange log")
		c.JSON(http.StatusInternalServerError, proto.ErrorResponse{Error: "internal server error"})
		return
	}

	resp := proto.ExchangeLogResponse{Entries: make([]proto.ExchangeLogEntry, 0, len(records))}
	for _, r := range records {
		resp.Entries = append(resp.Entries, proto.ExchangeLogEntry{
			ID:   r.ID,
			Body: r.Body,
			TS:   r.CreatedAt.Unix(),
		})
	}
	c.JSON(http.StatusOK, resp)
}

func rateToProto(r rates.Rate) proto.Rate {
	return proto.Rate{
		Currency: r.Currency,
		Base:     r.Base,
		Buy:      r.Buy.String(),
		Sell:     r.Sell.String(),
	}
}
