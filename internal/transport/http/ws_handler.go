package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/ratechat-server/internal/core"
)

const rateLimitText = "Rate limit exceeded, slow down"

// WSOptions tune the WebSocket endpoint.
type WSOptions struct {
	MaxMessageBytes    int64
	WriteTimeout       time.Duration
	RateLimitPerMinute int
}

// WSHandler upgrades HTTP connections and bridges them to core.Client.
type WSHandler struct {
	registry   *core.Registry
	dispatcher *core.Dispatcher
	opts       WSOptions
	log        *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(registry *core.Registry, dispatcher *core.Dispatcher, opts WSOptions, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{
		registry:   registry,
		dispatcher: dispatcher,
		opts:       opts,
		log:        logger,
	}
}

// wsConn adapts a websocket connection to core.Conn. Every message is one text frame.
type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) Send(ctx context.Context, text string) error {
	return c.conn.Write(ctx, websocket.MessageText, []byte(text))
}

func (c *wsConn) Close(reason string) error {
	return c.conn.Close(websocket.StatusGoingAway, reason)
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")
	if h.opts.MaxMessageBytes > 0 {
		conn.SetReadLimit(h.opts.MaxMessageBytes)
	}

	client := h.registry.Register(&wsConn{conn: conn}, r.RemoteAddr)
	defer h.registry.Unregister(client)

	limiter := newRateLimiter(h.opts.RateLimitPerMinute, time.Minute)

	err = h.readLoop(ctx, conn, client, limiter)

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("client_id", client.ID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

// readLoop handles one frame at a time so replies keep the order the client sent commands in.
func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, limiter *rateLimiter) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			h.log.Debug().Err(err).Str("client_id", client.ID).Msg("read ws frame")
			return err
		}
		if typ != websocket.MessageText {
			h.log.Debug().Str("client_id", client.ID).Msg("ignoring binary frame")
			continue
		}

		if !limiter.allow() {
			if err := h.reply(ctx, client, rateLimitText); err != nil {
				return err
			}
			continue
		}

		if err := h.dispatcher.Dispatch(ctx, client, string(data)); err != nil {
			h.log.Warn().Err(err).Str("client_id", client.ID).Msg("dispatch failed")
			return err
		}
	}
}

func (h *WSHandler) reply(ctx context.Context, client *core.Client, text string) error {
	if h.opts.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.WriteTimeout)
		defer cancel()
	}
	return client.Send(ctx, text)
}
