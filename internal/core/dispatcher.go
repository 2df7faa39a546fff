package core

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/vovakirdan/ratechat-server/internal/rates"
	"github.com/vovakirdan/ratechat-server/internal/store"
)

// Exchange answers the rate commands. *exchange.Service implements it.
type Exchange interface {
	Summary(ctx context.Context) string
	HistoryReport(ctx context.Context, days string) string
	ConvertText(ctx context.Context, amount decimal.Decimal, currency string, dir rates.Direction) string
}

// Dispatcher routes each inbound message to a broadcast or to a command handler.
type Dispatcher struct {
	broadcaster *Broadcaster
	exchange    Exchange
	journal     store.ExchangeLog
	log         *zerolog.Logger
}

// NewDispatcher builds a dispatcher. journal may be nil to skip journaling.
func NewDispatcher(broadcaster *Broadcaster, exchange Exchange, journal store.ExchangeLog, logger *zerolog.Logger) *Dispatcher {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Dispatcher{
		broadcaster: broadcaster,
		exchange:    exchange,
		journal:     journal,
		log:         logger,
	}
}

// Dispatch handles one message from client. Chat goes to everyone, sender included,
// as "<name>: <text>"; command results go back to client only.
// A non-nil error means the reply could not be delivered and the connection should close.
func (d *Dispatcher) Dispatch(ctx context.Context, client *Client, text string) error {
	cmd := ParseCommand(text)

	switch cmd.Kind {
	case CommandChat:
		d.broadcaster.Broadcast(ctx, client.Name+": "+cmd.Text)
		return nil
	case CommandExchangeNow:
		result := d.exchange.Summary(ctx)
		if err := d.reply(ctx, client, result); err != nil {
			return err
		}
		d.journalExchange(ctx, client, result)
		return nil
	case CommandExchangeHistory:
		return d.reply(ctx, client, d.exchange.HistoryReport(ctx, cmd.Days))
	case CommandBuyConvert, CommandSellConvert:
		return d.reply(ctx, client, d.exchange.ConvertText(ctx, cmd.Amount, cmd.Currency, cmd.Direction()))
	case CommandMalformed:
		return d.reply(ctx, client, cmd.Reason)
	default:
		return fmt.Errorf("unhandled command kind %s", cmd.Kind)
	}
}

func (d *Dispatcher) reply(ctx context.Context, client *Client, text string) error {
	if err := d.broadcaster.SendTo(ctx, client, text); err != nil {
		return fmt.Errorf("reply to %s: %w", client.ID, err)
	}
	return nil
}

func (d *Dispatcher) journalExchange(ctx context.Context, client *Client, result string) {
	if d.journal == nil {
		return
	}
	if err := d.journal.AppendExchange(ctx, result); err != nil {
		d.log.Warn().Err(err).Str("client_id", client.ID).Msg("failed to journal exchange lookup")
	}
}
