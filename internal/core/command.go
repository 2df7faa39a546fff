package core

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vovakirdan/ratechat-server/internal/rates"
)

// CommandKind describes what an inbound message asks for.
type CommandKind int

const (
	// CommandChat is plain text to broadcast.
	CommandChat CommandKind = iota
	// CommandExchangeNow asks for today's rates.
	CommandExchangeNow
	// CommandExchangeHistory asks for rates over the last Days days.
	CommandExchangeHistory
	// CommandBuyConvert converts Amount of Currency at the buying rate.
	CommandBuyConvert
	// CommandSellConvert converts Amount of Currency at the selling rate.
	CommandSellConvert
	// CommandMalformed is a reserved command with the wrong shape; Reason says why.
	CommandMalformed
)

func (k CommandKind) String() string {
	switch k {
	case CommandChat:
		return "chat"
	case CommandExchangeNow:
		return "exchange_now"
	case CommandExchangeHistory:
		return "exchange_history"
	case CommandBuyConvert:
		return "buy_convert"
	case CommandSellConvert:
		return "sell_convert"
	case CommandMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Reserved leading tokens.
const (
	TokenExchange    = "exchange"
	TokenBuyConvert  = "buy_convert"
	TokenSellConvert = "sell_convert"
)

// Texts sent back for malformed commands.
const (
	ReasonInvalidCommand = "Invalid command format"
	ReasonInvalidAmount  = "Invalid amount format"
)

// Command is the parsed form of an inbound message.
type Command struct {
	Kind     CommandKind
	Text     string
	Days     string
	Amount   decimal.Decimal
	Currency string
	Reason   string
}

// Direction returns the conversion side of a buy/sell command.
func (c Command) Direction() rates.Direction {
	if c.Kind == CommandSellConvert {
		return rates.Sell
	}
	return rates.Buy
}

// ParseCommand classifies text by its first whitespace-delimited token.
// A first token that merely starts with a reserved word is a malformed command, never chat.
// For convert commands the token count is checked before the amount is parsed,
// so "buy_convert abc" is a format error, not an amount error.
func ParseCommand(text string) Command {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Command{Kind: CommandChat, Text: text}
	}

	switch fields[0] {
	case TokenExchange:
		switch len(fields) {
		case 1:
			return Command{Kind: CommandExchangeNow}
		case 2:
			return Command{Kind: CommandExchangeHistory, Days: fields[1]}
		default:
			return malformed(ReasonInvalidCommand)
		}
	case TokenBuyConvert:
		return parseConvert(CommandBuyConvert, fields)
	case TokenSellConvert:
		return parseConvert(CommandSellConvert, fields)
	default:
		if hasReservedPrefix(fields[0]) {
			return malformed(ReasonInvalidCommand)
		}
		return Command{Kind: CommandChat, Text: text}
	}
}

// hasReservedPrefix reports whether token starts like a command without being one, e.g. "exchanges".
func hasReservedPrefix(token string) bool {
	for _, reserved := range []string{TokenExchange, TokenBuyConvert, TokenSellConvert} {
		if strings.HasPrefix(token, reserved) {
			return true
		}
	}
	return false
}

func parseConvert(kind CommandKind, fields []string) Command {
	if len(fields) != 3 {
		return malformed(ReasonInvalidCommand)
	}
	amount, err := rates.ParseAmount(fields[1])
	if err != nil {
		return malformed(ReasonInvalidAmount)
	}
	return Command{
		Kind:     kind,
		Amount:   amount,
		Currency: strings.ToUpper(fields[2]),
	}
}

func malformed(reason string) Command {
	return Command{Kind: CommandMalformed, Reason: reason}
}
